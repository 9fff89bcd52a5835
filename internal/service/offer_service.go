package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"school-link/internal/dto"
	"school-link/internal/model"
	"school-link/internal/repository"
	"school-link/pkg/lock"
)

// ── 市场需求模块业务错误 ──

var (
	ErrOfferNotFound = errors.New("市场需求不存在")
)

// OfferService 市场需求服务接口
type OfferService interface {
	Create(ctx context.Context, directionID string, req *dto.CreateOfferRequest) (*dto.MarketOfferResponse, error)
	GetByID(ctx context.Context, offerID string) (*dto.MarketOfferResponse, error)
	List(ctx context.Context, actorID, actorRole, status, search string, mineOnly bool) ([]dto.MarketOfferResponse, error)
	ExpressInterest(ctx context.Context, offerID, teacherID string) (*dto.MarketOfferResponse, error)
	WithdrawInterest(ctx context.Context, offerID, teacherID string) (*dto.MarketOfferResponse, error)
	Assign(ctx context.Context, offerID, directionID, teacherID string) (*dto.MarketOfferResponse, error)
	MarkTaken(ctx context.Context, offerID, directionID string) (*dto.MarketOfferResponse, error)
}

type offerService struct {
	repo                     *repository.Repository
	notifier                 Notifier
	locks                    *lock.KeyedMutex
	directTakeWithCandidates bool
	logger                   *zap.Logger
}

// NewOfferService 创建市场需求服务
func NewOfferService(repo *repository.Repository, notifier Notifier, locks *lock.KeyedMutex, directTakeWithCandidates bool, logger *zap.Logger) OfferService {
	return &offerService{
		repo:                     repo,
		notifier:                 notifier,
		locks:                    locks,
		directTakeWithCandidates: directTakeWithCandidates,
		logger:                   logger,
	}
}

// ────────────── Create ──────────────

// Create 校方发布需求，初始状态 available
func (s *offerService) Create(ctx context.Context, directionID string, req *dto.CreateOfferRequest) (*dto.MarketOfferResponse, error) {
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, ErrDateFormat
	}

	offer := &model.MarketOffer{
		Title:           req.Title,
		Subjects:        model.StringArray(req.Subjects),
		TargetClasses:   model.StringArray(req.TargetClasses),
		StudentCount:    req.StudentCount,
		Location:        req.Location,
		SessionsPerWeek: req.SessionsPerWeek,
		HoursPerSession: req.HoursPerSession,
		Days:            model.StringArray(req.Days),
		TimeSlot:        req.TimeSlot,
		HourlyRate:      req.HourlyRate,
		StartDate:       startDate,
		Description:     req.Description,
		Status:          model.OfferStatusAvailable,
	}
	offer.CreatedBy = &directionID

	if err := s.repo.MarketOffer.Create(ctx, offer); err != nil {
		return nil, err
	}

	s.logger.Info("市场需求已发布",
		zap.String("offer_id", offer.MarketOfferID),
		zap.String("created_by", directionID),
		zap.Float64("hourly_rate", offer.HourlyRate))

	return toOfferResponse(offer), nil
}

// ────────────── GetByID / List ──────────────

func (s *offerService) GetByID(ctx context.Context, offerID string) (*dto.MarketOfferResponse, error) {
	offer, err := s.loadOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	return toOfferResponse(offer), nil
}

// List 需求列表。mineOnly：校方看自己发布的 / 教师看自己报名的
func (s *offerService) List(ctx context.Context, actorID, actorRole, status, search string, mineOnly bool) ([]dto.MarketOfferResponse, error) {
	filter := repository.OfferFilter{Status: status, Search: search}
	if mineOnly {
		switch actorRole {
		case model.RoleDirection:
			filter.CreatedBy = actorID
		case model.RoleTeacher:
			filter.TeacherID = actorID
		}
	}

	offers, err := s.repo.MarketOffer.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.MarketOfferResponse, 0, len(offers))
	for i := range offers {
		resp = append(resp, *toOfferResponse(&offers[i]))
	}
	return resp, nil
}

// ────────────── ExpressInterest / WithdrawInterest ──────────────

// ExpressInterest 教师报名意向。重复报名幂等返回当前状态；
// 首次报名时通知需求发布方
func (s *offerService) ExpressInterest(ctx context.Context, offerID, teacherID string) (*dto.MarketOfferResponse, error) {
	unlock := s.locks.Lock("offer:" + offerID)
	defer unlock()

	offer, err := s.loadOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if err := offerCommandAllowed(offer, CmdExpressInterest, model.RoleTeacher); err != nil {
		return nil, err
	}

	if offer.HasInterest(teacherID) {
		return toOfferResponse(offer), nil // 幂等：已在意向集中
	}

	// 意向 ID 服务端生成：撤销后再报名产生新行，事件键随行变化，
	// 保证每次独立报名都是一次新事件而非历史事件的重放
	interest := &model.OfferInterest{
		OfferInterestID: uuid.New().String(),
		MarketOfferID:   offerID,
		TeacherID:       teacherID,
	}
	if err := s.repo.MarketOffer.AddInterest(ctx, interest); err != nil {
		return nil, err
	}

	s.logger.Info("教师报名需求",
		zap.String("offer_id", offerID),
		zap.String("teacher_id", teacherID))

	if offer.CreatedBy != nil {
		teacherName := teacherID
		if teacher, err := s.repo.User.GetByID(ctx, teacherID); err == nil {
			teacherName = teacher.Name
		}
		candidates := len(offer.Interests) + 1
		s.notifier.Dispatch(ctx, NotificationEvent{
			EventKey:    fmt.Sprintf("offer:%s:interest:%s", offerID, interest.OfferInterestID),
			TemplateKey: model.TemplateOfferInterest,
			RelatedType: "market_offer",
			RelatedID:   offerID,
			Messages: []EventMessage{{
				UserID:  *offer.CreatedBy,
				Title:   "新教师报名",
				Content: fmt.Sprintf("教师 %s 报名了需求「%s」，当前候选 %d 人。", teacherName, offer.Title, candidates),
			}},
		})
	}

	// 返回包含新意向的最新状态
	fresh, err := s.loadOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	return toOfferResponse(fresh), nil
}

// WithdrawInterest 教师撤销意向。未报名时幂等返回当前状态（集合语义）
func (s *offerService) WithdrawInterest(ctx context.Context, offerID, teacherID string) (*dto.MarketOfferResponse, error) {
	unlock := s.locks.Lock("offer:" + offerID)
	defer unlock()

	offer, err := s.loadOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if err := offerCommandAllowed(offer, CmdWithdrawInterest, model.RoleTeacher); err != nil {
		return nil, err
	}

	if !offer.HasInterest(teacherID) {
		return toOfferResponse(offer), nil
	}

	if err := s.repo.MarketOffer.RemoveInterest(ctx, offerID, teacherID); err != nil {
		return nil, err
	}

	s.logger.Info("教师撤销报名",
		zap.String("offer_id", offerID),
		zap.String("teacher_id", teacherID))

	fresh, err := s.loadOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	return toOfferResponse(fresh), nil
}

// ────────────── Assign / MarkTaken ──────────────

// Assign 校方从意向集中指派教师：available → taken。
// 通知被指派教师与需求发布方；未被选中的报名记录保留作审计，不另行通知
func (s *offerService) Assign(ctx context.Context, offerID, directionID, teacherID string) (*dto.MarketOfferResponse, error) {
	unlock := s.locks.Lock("offer:" + offerID)
	defer unlock()

	offer, err := s.loadOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if err := offerCommandAllowed(offer, CmdAssign, model.RoleDirection); err != nil {
		return nil, err
	}
	if err := resolveAssign(offer, teacherID, time.Now()); err != nil {
		return nil, err
	}
	offer.UpdatedBy = &directionID

	if err := s.repo.MarketOffer.UpdateResolution(ctx, offer); err != nil {
		return nil, err
	}

	s.logger.Info("需求已指派",
		zap.String("offer_id", offerID),
		zap.String("teacher_id", teacherID),
		zap.String("decided_by", directionID))

	teacherName := teacherID
	if teacher, err := s.repo.User.GetByID(ctx, teacherID); err == nil {
		teacherName = teacher.Name
	}
	messages := []EventMessage{{
		UserID:  teacherID,
		Title:   "需求已指派给您",
		Content: fmt.Sprintf("您已被指派需求「%s」，开课日期 %s。", offer.Title, offer.StartDate.Format("2006-01-02")),
	}}
	if offer.CreatedBy != nil {
		messages = append(messages, EventMessage{
			UserID:  *offer.CreatedBy,
			Title:   "需求指派完成",
			Content: fmt.Sprintf("需求「%s」已指派给教师 %s。", offer.Title, teacherName),
		})
	}
	s.notifier.Dispatch(ctx, NotificationEvent{
		EventKey:    fmt.Sprintf("offer:%s:assign:%s", offerID, teacherID),
		TemplateKey: model.TemplateOfferAssigned,
		RelatedType: "market_offer",
		RelatedID:   offerID,
		Messages:    messages,
	})

	return toOfferResponse(offer), nil
}

// MarkTaken 校方直接标记成交（系统外渠道）：available → taken，无指派教师。
// 已有报名教师时是否允许由 feature.direct_take_with_candidates 决定
func (s *offerService) MarkTaken(ctx context.Context, offerID, directionID string) (*dto.MarketOfferResponse, error) {
	unlock := s.locks.Lock("offer:" + offerID)
	defer unlock()

	offer, err := s.loadOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if err := offerCommandAllowed(offer, CmdMarkTaken, model.RoleDirection); err != nil {
		return nil, err
	}
	if err := resolveDirectTake(offer, s.directTakeWithCandidates, time.Now()); err != nil {
		return nil, err
	}
	offer.UpdatedBy = &directionID

	if err := s.repo.MarketOffer.UpdateResolution(ctx, offer); err != nil {
		return nil, err
	}

	s.logger.Info("需求已标记成交",
		zap.String("offer_id", offerID),
		zap.String("decided_by", directionID),
		zap.Int("candidates", len(offer.Interests)))

	return toOfferResponse(offer), nil
}

// ────────────── 内部辅助 ──────────────

func (s *offerService) loadOffer(ctx context.Context, offerID string) (*model.MarketOffer, error) {
	offer, err := s.repo.MarketOffer.GetByID(ctx, offerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOfferNotFound
		}
		return nil, err
	}
	return offer, nil
}

// toOfferResponse 模型转响应 DTO，附带派生薪酬
func toOfferResponse(offer *model.MarketOffer) *dto.MarketOfferResponse {
	resp := &dto.MarketOfferResponse{
		ID:              offer.MarketOfferID,
		Title:           offer.Title,
		Subjects:        offer.Subjects,
		TargetClasses:   offer.TargetClasses,
		StudentCount:    offer.StudentCount,
		Location:        offer.Location,
		SessionsPerWeek: offer.SessionsPerWeek,
		HoursPerSession: offer.HoursPerSession,
		Days:            offer.Days,
		TimeSlot:        offer.TimeSlot,
		HourlyRate:      offer.HourlyRate,
		WeeklyPay:       offer.WeeklyPay(),
		MonthlyPay:      offer.MonthlyPay(),
		StartDate:       offer.StartDate.Format("2006-01-02"),
		Description:     offer.Description,
		Status:          offer.Status,
		CreatedAt:       offer.CreatedAt.Format(time.RFC3339),
	}
	if offer.CreatedBy != nil {
		resp.CreatedBy = *offer.CreatedBy
	}
	if offer.AssignedTeacherID != nil {
		resp.AssignedTeacherID = *offer.AssignedTeacherID
	}
	if offer.ResolvedAt != nil {
		resp.ResolvedAt = offer.ResolvedAt.Format(time.RFC3339)
	}
	resp.InterestedTeachers = make([]dto.OfferInterestResponse, 0, len(offer.Interests))
	for _, it := range offer.Interests {
		ir := dto.OfferInterestResponse{
			TeacherID: it.TeacherID,
			CreatedAt: it.CreatedAt.Format(time.RFC3339),
		}
		if it.Teacher != nil {
			ir.TeacherName = it.Teacher.Name
		}
		resp.InterestedTeachers = append(resp.InterestedTeachers, ir)
	}
	return resp
}
