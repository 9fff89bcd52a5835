package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	pkgerrors "school-link/pkg/errors"

	"school-link/internal/model"
)

// OfferFilter 市场需求查询条件（字段为空则不过滤）
type OfferFilter struct {
	Status    string
	CreatedBy string
	TeacherID string // 仅返回该教师已报名的需求
	Search    string // 模糊匹配标题 / 科目 / 地点
}

// MarketOfferRepository 市场需求数据访问接口
type MarketOfferRepository interface {
	Create(ctx context.Context, offer *model.MarketOffer) error
	GetByID(ctx context.Context, id string) (*model.MarketOffer, error)
	List(ctx context.Context, filter OfferFilter) ([]model.MarketOffer, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
	// UpdateResolution 以 status='available' 为条件写入终态。
	// 零行受影响说明需求已被并发终结，返回 ErrOptimisticLock。
	UpdateResolution(ctx context.Context, offer *model.MarketOffer) error
	// AddInterest 幂等写入报名意向（冲突时不报错不重复）
	AddInterest(ctx context.Context, interest *model.OfferInterest) error
	RemoveInterest(ctx context.Context, offerID, teacherID string) error
	// ExpireBefore 将开始日期早于 cutoff 的 available 需求批量置为 expired，返回受影响行数
	ExpireBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type marketOfferRepo struct {
	db *gorm.DB
}

// NewMarketOfferRepo 创建 MarketOfferRepository 实例
func NewMarketOfferRepo(db *gorm.DB) MarketOfferRepository {
	return &marketOfferRepo{db: db}
}

func (r *marketOfferRepo) Create(ctx context.Context, offer *model.MarketOffer) error {
	return r.db.WithContext(ctx).Create(offer).Error
}

func (r *marketOfferRepo) GetByID(ctx context.Context, id string) (*model.MarketOffer, error) {
	var offer model.MarketOffer
	err := r.db.WithContext(ctx).
		Preload("Interests").
		Preload("Interests.Teacher").
		Preload("AssignedTeacher").
		Where("market_offer_id = ?", id).
		First(&offer).Error
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *marketOfferRepo) List(ctx context.Context, filter OfferFilter) ([]model.MarketOffer, error) {
	q := r.db.WithContext(ctx).
		Model(&model.MarketOffer{}).
		Preload("Interests")

	if filter.Status != "" {
		q = q.Where("market_offers.status = ?", filter.Status)
	}
	if filter.CreatedBy != "" {
		q = q.Where("market_offers.created_by = ?", filter.CreatedBy)
	}
	if filter.TeacherID != "" {
		q = q.Joins("JOIN offer_interests ON offer_interests.market_offer_id = market_offers.market_offer_id").
			Where("offer_interests.teacher_id = ?", filter.TeacherID)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("market_offers.title ILIKE ? OR market_offers.location ILIKE ? OR array_to_string(market_offers.subjects, ',') ILIKE ?",
			like, like, like)
	}

	var offers []model.MarketOffer
	err := q.Order("market_offers.created_at DESC").Find(&offers).Error
	return offers, err
}

func (r *marketOfferRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&model.MarketOffer{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, rw := range rows {
		counts[rw.Status] = rw.Count
	}
	return counts, nil
}

func (r *marketOfferRepo) UpdateResolution(ctx context.Context, offer *model.MarketOffer) error {
	res := r.db.WithContext(ctx).
		Model(&model.MarketOffer{}).
		Where("market_offer_id = ? AND status = ?", offer.MarketOfferID, model.OfferStatusAvailable).
		Updates(map[string]interface{}{
			"status":              offer.Status,
			"assigned_teacher_id": offer.AssignedTeacherID,
			"resolved_at":         offer.ResolvedAt,
			"updated_by":          offer.UpdatedBy,
			"updated_at":          gorm.Expr("NOW()"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}

func (r *marketOfferRepo) AddInterest(ctx context.Context, interest *model.OfferInterest) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(interest).Error
}

func (r *marketOfferRepo) RemoveInterest(ctx context.Context, offerID, teacherID string) error {
	return r.db.WithContext(ctx).
		Where("market_offer_id = ? AND teacher_id = ?", offerID, teacherID).
		Delete(&model.OfferInterest{}).Error
}

func (r *marketOfferRepo) ExpireBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.MarketOffer{}).
		Where("status = ? AND start_date < ?", model.OfferStatusAvailable, cutoff).
		Updates(map[string]interface{}{
			"status":      model.OfferStatusExpired,
			"resolved_at": gorm.Expr("NOW()"),
			"updated_at":  gorm.Expr("NOW()"),
		})
	return res.RowsAffected, res.Error
}
