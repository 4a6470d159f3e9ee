package repository

import (
	"exam_prep_backend/internal/model"

	"gorm.io/gorm"
)

type BatchRepository struct {
	DB *gorm.DB
}

func NewBatchRepository(db *gorm.DB) *BatchRepository {
	return &BatchRepository{DB: db}
}

func (r *BatchRepository) Create(batch *model.Batch) error {
	return r.DB.Create(batch).Error
}

func (r *BatchRepository) FindByID(id string) (*model.Batch, error) {
	var b model.Batch
	if err := r.DB.First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BatchRepository) Update(batch *model.Batch) error {
	return r.DB.Save(batch).Error
}

func (r *BatchRepository) Delete(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		// 解除学生的批次归属，批次删除后这些学生恢复"全部可见"范围
		if err := tx.Model(&model.User{}).Where("batch_id = ?", id).Update("batch_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Batch{}, "id = ?", id).Error
	})
}

func (r *BatchRepository) List() ([]model.Batch, error) {
	var batches []model.Batch
	err := r.DB.Order("created_at asc").Find(&batches).Error
	return batches, err
}
