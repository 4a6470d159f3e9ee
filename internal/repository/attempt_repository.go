package repository

import (
	"time"

	"exam_prep_backend/internal/model"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) Create(a *model.Attempt) error {
	return r.DB.Create(a).Error
}

func (r *AttemptRepository) FindByID(id string) (*model.Attempt, error) {
	var a model.Attempt
	if err := r.DB.First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// ListInProgress 用户在某试卷上的全部未提交记录, 按创建先后排序
func (r *AttemptRepository) ListInProgress(userID uint, testID string) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.DB.Where("user_id = ? AND test_id = ? AND status = ?",
		userID, testID, model.AttemptStatusInProgress).
		Order("created_at asc").Order("id asc").
		Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) Delete(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("attempt_id = ?", id).Delete(&model.AttemptAnswer{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Attempt{}, "id = ?", id).Error
	})
}

func (r *AttemptRepository) MarkAbandoned(id string) error {
	return r.DB.Model(&model.Attempt{}).
		Where("id = ? AND status = ?", id, model.AttemptStatusInProgress).
		Update("status", model.AttemptStatusAbandoned).Error
}

// UpsertAnswer 按 (attempt_id, question_id) 写入或覆盖答案
func (r *AttemptRepository) UpsertAnswer(attemptID, questionID, selected string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var existing model.AttemptAnswer
		err := tx.Where("attempt_id = ? AND question_id = ?", attemptID, questionID).
			First(&existing).Error
		if err == nil {
			return tx.Model(&existing).Update("selected", selected).Error
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		answer := model.AttemptAnswer{
			AttemptID:  attemptID,
			QuestionID: questionID,
			Selected:   selected,
		}
		return tx.Create(&answer).Error
	})
}

func (r *AttemptRepository) GetAnswers(attemptID string) ([]model.AttemptAnswer, error) {
	var answers []model.AttemptAnswer
	err := r.DB.Where("attempt_id = ?", attemptID).Find(&answers).Error
	return answers, err
}

// SubmitUpdate 条件更新: 只有 status 仍为 in_progress 的行会被写入,
// 返回是否真正完成了本次提交, 避免并发双重提交覆盖成绩
func (r *AttemptRepository) SubmitUpdate(a *model.Attempt) (bool, error) {
	result := r.DB.Model(&model.Attempt{}).
		Where("id = ? AND status = ?", a.ID, model.AttemptStatusInProgress).
		Updates(map[string]interface{}{
			"status":           model.AttemptStatusSubmitted,
			"submitted_at":     a.SubmittedAt,
			"score":            a.Score,
			"correct_count":    a.CorrectCount,
			"incorrect_count":  a.IncorrectCount,
			"unanswered_count": a.UnansweredCount,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListExpiredInProgress 返回已超时(含宽限期)仍未提交的作答记录, 供后台任务收尾
func (r *AttemptRepository) ListExpiredInProgress(grace time.Duration, now time.Time) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.DB.
		Joins("JOIN tests ON tests.id = attempts.test_id").
		Where("attempts.status = ?", model.AttemptStatusInProgress).
		Where("attempts.started_at < DATE_SUB(?, INTERVAL tests.duration_minutes MINUTE)",
			now.Add(-grace)).
		Find(&attempts).Error
	return attempts, err
}

// ListSubmittedByTest 排行榜数据源: 分数降序, 用时升序
func (r *AttemptRepository) ListSubmittedByTest(testID string) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.DB.Where("test_id = ? AND status = ?", testID, model.AttemptStatusSubmitted).
		Order("score desc").Order("timestampdiff(second, started_at, submitted_at) asc").
		Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) ListByUser(userID uint, page, limit int) ([]model.Attempt, int64, error) {
	query := r.DB.Model(&model.Attempt{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var attempts []model.Attempt
	offset := (page - 1) * limit
	err := query.Order("started_at desc").Offset(offset).Limit(limit).Find(&attempts).Error
	return attempts, total, err
}

// CountSubmittedByTest 用于试卷统计
func (r *AttemptRepository) CountSubmittedByTest(testID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Attempt{}).
		Where("test_id = ? AND status = ?", testID, model.AttemptStatusSubmitted).
		Count(&count).Error
	return count, err
}
