package service

import (
	"errors"
	"testing"
	"time"

	"school-link/internal/model"
)

func offerWithInterests(teacherIDs ...string) *model.MarketOffer {
	offer := &model.MarketOffer{
		MarketOfferID: "offer-1",
		Status:        model.OfferStatusAvailable,
	}
	for _, id := range teacherIDs {
		offer.Interests = append(offer.Interests, model.OfferInterest{
			MarketOfferID: offer.MarketOfferID,
			TeacherID:     id,
		})
	}
	return offer
}

func TestResolveAssign(t *testing.T) {
	now := time.Now()

	t.Run("指派意向集中的教师", func(t *testing.T) {
		offer := offerWithInterests("t1", "t2")
		if err := resolveAssign(offer, "t2", now); err != nil {
			t.Fatalf("不期望出错，得到 %v", err)
		}
		if offer.Status != model.OfferStatusTaken {
			t.Errorf("状态期望 taken，得到 %s", offer.Status)
		}
		if offer.AssignedTeacherID == nil || *offer.AssignedTeacherID != "t2" {
			t.Errorf("指派教师期望 t2，得到 %v", offer.AssignedTeacherID)
		}
		if offer.ResolvedAt == nil || !offer.ResolvedAt.Equal(now) {
			t.Errorf("成交时间未写入")
		}
		// 落选者的报名记录保留
		if len(offer.Interests) != 2 {
			t.Errorf("意向集期望保留 2 条，得到 %d", len(offer.Interests))
		}
	})

	t.Run("指派未报名教师被拒绝", func(t *testing.T) {
		offer := offerWithInterests("t1")
		err := resolveAssign(offer, "t9", now)
		if !errors.Is(err, ErrTeacherNotInterested) {
			t.Fatalf("期望 ErrTeacherNotInterested，得到 %v", err)
		}
		if offer.Status != model.OfferStatusAvailable {
			t.Errorf("失败路径不应改变状态，得到 %s", offer.Status)
		}
	})

	t.Run("空意向集不可指派", func(t *testing.T) {
		offer := offerWithInterests()
		if err := resolveAssign(offer, "t1", now); !errors.Is(err, ErrTeacherNotInterested) {
			t.Fatalf("期望 ErrTeacherNotInterested，得到 %v", err)
		}
	})

	t.Run("终态需求不可指派", func(t *testing.T) {
		offer := offerWithInterests("t1")
		offer.Status = model.OfferStatusTaken
		if err := resolveAssign(offer, "t1", now); !errors.Is(err, ErrAlreadyResolved) {
			t.Fatalf("期望 ErrAlreadyResolved，得到 %v", err)
		}
	})
}

func TestResolveDirectTake(t *testing.T) {
	now := time.Now()

	t.Run("无报名时直接成交", func(t *testing.T) {
		offer := offerWithInterests()
		if err := resolveDirectTake(offer, false, now); err != nil {
			t.Fatalf("不期望出错，得到 %v", err)
		}
		if offer.Status != model.OfferStatusTaken {
			t.Errorf("状态期望 taken，得到 %s", offer.Status)
		}
		if offer.AssignedTeacherID != nil {
			t.Errorf("直接成交不应有指派教师")
		}
	})

	t.Run("开关允许时有报名也可直接成交", func(t *testing.T) {
		offer := offerWithInterests("t1")
		if err := resolveDirectTake(offer, true, now); err != nil {
			t.Fatalf("不期望出错，得到 %v", err)
		}
		if offer.Status != model.OfferStatusTaken || offer.AssignedTeacherID != nil {
			t.Errorf("期望无指派成交，得到 status=%s assigned=%v", offer.Status, offer.AssignedTeacherID)
		}
	})

	t.Run("开关禁止时有报名被拒绝", func(t *testing.T) {
		offer := offerWithInterests("t1")
		err := resolveDirectTake(offer, false, now)
		if !errors.Is(err, ErrDirectTakeBlocked) {
			t.Fatalf("期望 ErrDirectTakeBlocked，得到 %v", err)
		}
		if offer.Status != model.OfferStatusAvailable {
			t.Errorf("失败路径不应改变状态，得到 %s", offer.Status)
		}
	})

	t.Run("终态需求不可成交", func(t *testing.T) {
		offer := offerWithInterests()
		offer.Status = model.OfferStatusExpired
		if err := resolveDirectTake(offer, true, now); !errors.Is(err, ErrAlreadyResolved) {
			t.Fatalf("期望 ErrAlreadyResolved，得到 %v", err)
		}
	})
}
