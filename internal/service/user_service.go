package service

import (
	"exam_prep_backend/internal/model"
	"exam_prep_backend/internal/repository"
	"exam_prep_backend/internal/util"

	"gorm.io/gorm"
)

type UserService struct {
	UserRepo  *repository.UserRepository
	BatchRepo *repository.BatchRepository
}

func NewUserService(userRepo *repository.UserRepository, batchRepo *repository.BatchRepository) *UserService {
	return &UserService{
		UserRepo:  userRepo,
		BatchRepo: batchRepo,
	}
}

func (s *UserService) GetProfile(userID uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdateProfile(userID uint, name, avatar string) (*model.User, error) {
	user, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}
	if name != "" {
		user.Name = name
	}
	if avatar != "" {
		user.Avatar = avatar
	}
	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) ListUsers(page, limit int, role string) ([]model.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.UserRepo.List(page, limit, role)
}

// AssignBatch 将学生分配到批次, batchID 为 nil 时移出批次
func (s *UserService) AssignBatch(userID uint, batchID *string) error {
	if _, err := s.GetProfile(userID); err != nil {
		return err
	}
	if batchID != nil {
		if _, err := s.BatchRepo.FindByID(*batchID); err != nil {
			if err == gorm.ErrRecordNotFound {
				return util.ErrBatchNotFound
			}
			return err
		}
	}
	return s.UserRepo.AssignBatch(userID, batchID)
}

func (s *UserService) SetDisabled(userID uint, disabled bool) error {
	user, err := s.GetProfile(userID)
	if err != nil {
		return err
	}
	user.Disabled = disabled
	return s.UserRepo.Update(user)
}

func (s *UserService) CreateBatch(batch *model.Batch) error {
	return s.BatchRepo.Create(batch)
}

func (s *UserService) UpdateBatch(id, name, description string) (*model.Batch, error) {
	batch, err := s.BatchRepo.FindByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrBatchNotFound
		}
		return nil, err
	}
	if name != "" {
		batch.Name = name
	}
	batch.Description = description
	if err := s.BatchRepo.Update(batch); err != nil {
		return nil, err
	}
	return batch, nil
}

func (s *UserService) DeleteBatch(id string) error {
	if _, err := s.BatchRepo.FindByID(id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrBatchNotFound
		}
		return err
	}
	return s.BatchRepo.Delete(id)
}

func (s *UserService) ListBatches() ([]model.Batch, error) {
	return s.BatchRepo.List()
}
