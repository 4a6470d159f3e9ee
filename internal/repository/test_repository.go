package repository

import (
	"time"

	"exam_prep_backend/internal/model"

	"gorm.io/gorm"
)

type TestRepository struct {
	DB *gorm.DB
}

func NewTestRepository(db *gorm.DB) *TestRepository {
	return &TestRepository{DB: db}
}

func (r *TestRepository) Create(t *model.Test, questionIDs []string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(t).Error; err != nil {
			return err
		}
		for i, qid := range questionIDs {
			tq := model.TestQuestion{TestID: t.ID, QuestionID: qid, Order: i}
			if err := tx.Create(&tq).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *TestRepository) FindByID(id string) (*model.Test, error) {
	var t model.Test
	if err := r.DB.First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// Update 替换试卷元信息和题目列表
func (r *TestRepository) Update(t *model.Test, questionIDs []string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(t).Error; err != nil {
			return err
		}
		if questionIDs == nil {
			return nil
		}
		if err := tx.Where("test_id = ?", t.ID).Delete(&model.TestQuestion{}).Error; err != nil {
			return err
		}
		for i, qid := range questionIDs {
			tq := model.TestQuestion{TestID: t.ID, QuestionID: qid, Order: i}
			if err := tx.Create(&tq).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *TestRepository) Delete(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("test_id = ?", id).Delete(&model.TestQuestion{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Test{}, "id = ?", id).Error
	})
}

func (r *TestRepository) Publish(id string, now time.Time) error {
	return r.DB.Model(&model.Test{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       model.TestStatusPublished,
			"published_at": now,
		}).Error
}

// QuestionIDs 按 order 升序返回试卷的题目 ID
func (r *TestRepository) QuestionIDs(testID string) ([]string, error) {
	var tqs []model.TestQuestion
	if err := r.DB.Where("test_id = ?", testID).Order("`order` asc").Find(&tqs).Error; err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(tqs))
	for _, tq := range tqs {
		ids = append(ids, tq.QuestionID)
	}
	return ids, nil
}

func (r *TestRepository) CountQuestions(testID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.TestQuestion{}).Where("test_id = ?", testID).Count(&count).Error
	return count, err
}

func (r *TestRepository) List(page, limit int, status string) ([]model.Test, int64, error) {
	query := r.DB.Model(&model.Test{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tests []model.Test
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&tests).Error
	return tests, total, err
}

// ListPublished 返回全部已发布试卷, 批次可见性由 service 层过滤
func (r *TestRepository) ListPublished() ([]model.Test, error) {
	var tests []model.Test
	err := r.DB.Where("status = ?", model.TestStatusPublished).
		Order("published_at desc").Find(&tests).Error
	return tests, err
}
