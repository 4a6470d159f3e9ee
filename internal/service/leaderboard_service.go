package service

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"exam_prep_backend/internal/config"
	"exam_prep_backend/internal/model"
	"exam_prep_backend/internal/repository"
	"exam_prep_backend/internal/util"
	"exam_prep_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 段位阈值（按累计得分）
const (
	TierBronze   = "bronze"
	TierSilver   = "silver"
	TierGold     = "gold"
	TierPlatinum = "platinum"
)

type LeaderboardService struct {
	AttemptRepo *repository.AttemptRepository
	TestRepo    *repository.TestRepository
	UserRepo    *repository.UserRepository
	Redis       *redis.Client
	Cfg         *config.Config
}

func NewLeaderboardService(
	attemptRepo *repository.AttemptRepository,
	testRepo *repository.TestRepository,
	userRepo *repository.UserRepository,
	rdb *redis.Client,
	cfg *config.Config,
) *LeaderboardService {
	return &LeaderboardService{
		AttemptRepo: attemptRepo,
		TestRepo:    testRepo,
		UserRepo:    userRepo,
		Redis:       rdb,
		Cfg:         cfg,
	}
}

// LeaderboardEntry 单条排名：分数降序、用时升序，分数与用时都相同的并列同名次
type LeaderboardEntry struct {
	Rank             int       `json:"rank"`
	UserID           uint      `json:"userId"`
	Name             string    `json:"name"`
	Score            float64   `json:"score"`
	TimeTakenSeconds int       `json:"timeTakenSeconds"`
	SubmittedAt      time.Time `json:"submittedAt"`
}

// GlobalEntry 全站榜单的按用户聚合
type GlobalEntry struct {
	Rank       int     `json:"rank"`
	UserID     uint    `json:"userId"`
	Name       string  `json:"name"`
	TotalScore float64 `json:"totalScore"`
	TestsTaken int     `json:"testsTaken"`
	Accuracy   float64 `json:"accuracy"`
	Tier       string  `json:"tier"`
}

// TestStats 管理端的试卷统计
type TestStats struct {
	TestID         string  `json:"testId"`
	Attempts       int     `json:"attempts"`
	AverageScore   float64 `json:"averageScore"`
	AverageSeconds float64 `json:"averageSeconds"`
}

func leaderboardCacheKey(testID string) string {
	return "leaderboard:test:" + testID
}

// ForTest 试卷排行榜，Redis 读穿缓存，交卷时失效
func (s *LeaderboardService) ForTest(testID string) ([]LeaderboardEntry, error) {
	if _, err := s.TestRepo.FindByID(testID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrTestNotFound
		}
		return nil, err
	}

	ctx := context.Background()
	key := leaderboardCacheKey(testID)
	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, key).Result(); err == nil {
			var entries []LeaderboardEntry
			if json.Unmarshal([]byte(cached), &entries) == nil {
				return entries, nil
			}
		}
	}

	attempts, err := s.AttemptRepo.ListSubmittedByTest(testID)
	if err != nil {
		return nil, err
	}
	entries := s.rankAttempts(attempts)

	if s.Redis != nil {
		if data, err := json.Marshal(entries); err == nil {
			ttl := time.Duration(s.Cfg.Exam.LeaderboardCacheTTL) * time.Second
			if err := s.Redis.Set(ctx, key, data, ttl).Err(); err != nil {
				logger.Log.Warn("leaderboard cache write failed",
					zap.String("testId", testID), zap.Error(err))
			}
		}
	}
	return entries, nil
}

// InvalidateTest 交卷后使该试卷的榜单缓存立即失效
func (s *LeaderboardService) InvalidateTest(testID string) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(context.Background(), leaderboardCacheKey(testID)).Err(); err != nil {
		logger.Log.Warn("leaderboard cache invalidation failed",
			zap.String("testId", testID), zap.Error(err))
	}
}

func (s *LeaderboardService) rankAttempts(attempts []model.Attempt) []LeaderboardEntry {
	rows := make([]LeaderboardEntry, 0, len(attempts))
	for i := range attempts {
		a := &attempts[i]
		if a.SubmittedAt == nil {
			continue
		}
		name := ""
		if user, err := s.UserRepo.FindByID(a.UserID); err == nil {
			name = user.Name
		}
		rows = append(rows, LeaderboardEntry{
			UserID:           a.UserID,
			Name:             name,
			Score:            a.Score,
			TimeTakenSeconds: int(a.SubmittedAt.Sub(a.StartedAt).Seconds()),
			SubmittedAt:      *a.SubmittedAt,
		})
	}
	return DenseRank(rows)
}

// DenseRank 排序并写入名次：分数降序、用时升序，
// 两者都相同的并列同一名次，下一个不同的条目名次只加一
func DenseRank(rows []LeaderboardEntry) []LeaderboardEntry {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		return rows[i].TimeTakenSeconds < rows[j].TimeTakenSeconds
	})
	rank := 0
	for i := range rows {
		if i == 0 || rows[i].Score != rows[i-1].Score ||
			rows[i].TimeTakenSeconds != rows[i-1].TimeTakenSeconds {
			rank++
		}
		rows[i].Rank = rank
	}
	return rows
}

// TierFor 按累计得分划段
func TierFor(totalScore float64) string {
	switch {
	case totalScore >= 3000:
		return TierPlatinum
	case totalScore >= 1500:
		return TierGold
	case totalScore >= 500:
		return TierSilver
	default:
		return TierBronze
	}
}

// Global 全站榜单：按用户聚合全部已提交作答，读时重算
func (s *LeaderboardService) Global() ([]GlobalEntry, error) {
	var attempts []model.Attempt
	err := s.AttemptRepo.DB.
		Where("status = ?", model.AttemptStatusSubmitted).
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}

	type agg struct {
		totalScore float64
		testsTaken int
		correct    int
		questions  int
	}
	byUser := make(map[uint]*agg)
	for i := range attempts {
		a := &attempts[i]
		entry, ok := byUser[a.UserID]
		if !ok {
			entry = &agg{}
			byUser[a.UserID] = entry
		}
		entry.totalScore += a.Score
		entry.testsTaken++
		entry.correct += a.CorrectCount
		entry.questions += a.CorrectCount + a.IncorrectCount + a.UnansweredCount
	}

	entries := make([]GlobalEntry, 0, len(byUser))
	for userID, a := range byUser {
		name := ""
		if user, err := s.UserRepo.FindByID(userID); err == nil {
			name = user.Name
		}
		accuracy := 0.0
		if a.questions > 0 {
			accuracy = float64(a.correct) / float64(a.questions)
		}
		entries = append(entries, GlobalEntry{
			UserID:     userID,
			Name:       name,
			TotalScore: a.totalScore,
			TestsTaken: a.testsTaken,
			Accuracy:   accuracy,
			Tier:       TierFor(a.totalScore),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TotalScore != entries[j].TotalScore {
			return entries[i].TotalScore > entries[j].TotalScore
		}
		return entries[i].TestsTaken < entries[j].TestsTaken
	})
	rank := 0
	for i := range entries {
		if i == 0 || entries[i].TotalScore != entries[i-1].TotalScore {
			rank++
		}
		entries[i].Rank = rank
	}
	return entries, nil
}

// StatsForTest 管理端统计：场次、平均分、平均用时
func (s *LeaderboardService) StatsForTest(testID string) (*TestStats, error) {
	if _, err := s.TestRepo.FindByID(testID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrTestNotFound
		}
		return nil, err
	}

	attempts, err := s.AttemptRepo.ListSubmittedByTest(testID)
	if err != nil {
		return nil, err
	}

	stats := &TestStats{TestID: testID, Attempts: len(attempts)}
	if len(attempts) == 0 {
		return stats, nil
	}
	var scoreSum, secondsSum float64
	for i := range attempts {
		scoreSum += attempts[i].Score
		if attempts[i].SubmittedAt != nil {
			secondsSum += attempts[i].SubmittedAt.Sub(attempts[i].StartedAt).Seconds()
		}
	}
	stats.AverageScore = scoreSum / float64(len(attempts))
	stats.AverageSeconds = secondsSum / float64(len(attempts))
	return stats, nil
}
