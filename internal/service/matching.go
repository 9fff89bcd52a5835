package service

import (
	"errors"
	"time"

	"school-link/internal/model"
)

// ErrDirectTakeBlocked 功能开关关闭时，已有报名教师的需求不允许绕过匹配直接成交
var ErrDirectTakeBlocked = errors.New("已有教师报名，请通过指派完成成交")

// resolveAssign 指派路径：从意向集中选定教师，需求进入 taken 终态。
// 未报名的教师不可被指派；未被选中的报名记录保留作审计，不自动通知。
// 就地修改 offer，由调用方负责持久化。
func resolveAssign(offer *model.MarketOffer, teacherID string, now time.Time) error {
	if offer.IsTerminal() {
		return ErrAlreadyResolved
	}
	if !offer.HasInterest(teacherID) {
		return ErrTeacherNotInterested
	}

	tid := teacherID
	offer.AssignedTeacherID = &tid
	offer.Status = model.OfferStatusTaken
	offer.ResolvedAt = &now
	return nil
}

// resolveDirectTake 直接成交路径：需求通过系统外渠道成交，无指派教师。
// allowWithCandidates=false 时，存在报名教师即拒绝（配置策略，见 feature.direct_take_with_candidates）。
func resolveDirectTake(offer *model.MarketOffer, allowWithCandidates bool, now time.Time) error {
	if offer.IsTerminal() {
		return ErrAlreadyResolved
	}
	if !allowWithCandidates && len(offer.Interests) > 0 {
		return ErrDirectTakeBlocked
	}

	offer.AssignedTeacherID = nil
	offer.Status = model.OfferStatusTaken
	offer.ResolvedAt = &now
	return nil
}
