package util

import (
	"errors"

	"github.com/gin-gonic/gin"
)

// 校验类错误：输入不合法，直接拒绝，不产生任何状态变化
var (
	ErrEmailRegistered    = errors.New("该邮箱已被注册")
	ErrInvalidOptionIndex = errors.New("selected option index out of range")
	ErrQuestionNotInTest  = errors.New("question does not belong to this test")
	ErrTestNotPublished   = errors.New("test not published or not accessible")
	ErrTooFewOptions      = errors.New("question must have at least 2 options")
	ErrNoCorrectOption    = errors.New("question must have at least 1 correct option")
	ErrTestHasNoQuestions = errors.New("test has no questions")
)

// 冲突类错误：对已终结或已过期的作答做写操作，或删除仍被引用的资源
var (
	ErrAttemptSubmitted = errors.New("attempt already submitted")
	ErrAttemptExpired   = errors.New("attempt expired")
	ErrAttemptAbandoned = errors.New("attempt abandoned")
	ErrQuestionInUse    = errors.New("question is referenced by a test")
)

// 未找到/归属错误
var (
	ErrUserNotFound     = errors.New("用户不存在")
	ErrTestNotFound     = errors.New("test not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrAttemptNotFound  = errors.New("attempt not found")
	ErrBatchNotFound    = errors.New("batch not found")
	ErrPermissionDenied = errors.New("permission denied")
)

// HandleServiceError 按错误分类映射HTTP状态码，未识别的记日志返回500
func HandleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrTestNotFound),
		errors.Is(err, ErrQuestionNotFound),
		errors.Is(err, ErrAttemptNotFound),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrBatchNotFound),
		errors.Is(err, ErrPermissionDenied):
		NotFound(c)
	case errors.Is(err, ErrAttemptSubmitted),
		errors.Is(err, ErrAttemptExpired),
		errors.Is(err, ErrAttemptAbandoned),
		errors.Is(err, ErrQuestionInUse):
		Conflict(c, err.Error())
	case errors.Is(err, ErrInvalidOptionIndex),
		errors.Is(err, ErrQuestionNotInTest),
		errors.Is(err, ErrTestNotPublished),
		errors.Is(err, ErrTooFewOptions),
		errors.Is(err, ErrNoCorrectOption),
		errors.Is(err, ErrTestHasNoQuestions),
		errors.Is(err, ErrEmailRegistered):
		BadRequest(c, err.Error())
	default:
		LogInternalError(c, err)
	}
}
