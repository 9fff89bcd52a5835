package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"school-link/internal/dto"
	"school-link/internal/model"
	"school-link/pkg/lock"
)

func newTestAbsenceService(env *testEnv) AbsenceService {
	notifier := NewNotifier(env.repo, env.claimer, env.sender, 100*time.Millisecond, zap.NewNop())
	return NewAbsenceService(env.repo, notifier, lock.NewKeyedMutex(), zap.NewNop())
}

func seedAbsenceWorld(env *testEnv) {
	env.seedUser("direction-1", "Kouassi", model.RoleDirection)
	env.seedUser("teacher-1", "Aya", model.RoleTeacher)
	env.seedUser("parent-1", "Koné", model.RoleParent)
	env.seedStudent("student-1", "Adjoua", "parent-1")
}

func submitReq() *dto.SubmitAbsenceRequest {
	return &dto.SubmitAbsenceRequest{
		StudentID:     "student-1",
		AbsenceDate:   "2026-09-10T14:00:00Z",
		Reason:        "教师外出培训",
		MakeupDate:    "2026-09-12T09:00:00Z",
		MakeupMinutes: 90,
		Location:      "A栋 201",
		Subjects:      []string{"数学"},
	}
}

func TestAbsenceSubmit(t *testing.T) {
	t.Run("提交成功初始为待审批", func(t *testing.T) {
		env := newTestEnv()
		seedAbsenceWorld(env)
		svc := newTestAbsenceService(env)

		resp, err := svc.Submit(context.Background(), "teacher-1", submitReq())
		if err != nil {
			t.Fatalf("不期望出错，得到 %v", err)
		}
		if resp.Status != model.AbsenceStatusPending {
			t.Errorf("状态期望 pending，得到 %s", resp.Status)
		}
		if resp.MakeupStatus != model.MakeupStatusPlanned {
			t.Errorf("补课状态期望 planned，得到 %s", resp.MakeupStatus)
		}
		if resp.StudentName != "Adjoua" {
			t.Errorf("学生姓名期望 Adjoua，得到 %s", resp.StudentName)
		}
		// 提交不触发通知
		if len(env.notifications.records) != 0 {
			t.Errorf("提交不应产生通知，得到 %d 条", len(env.notifications.records))
		}
	})

	t.Run("学生不存在", func(t *testing.T) {
		env := newTestEnv()
		seedAbsenceWorld(env)
		svc := newTestAbsenceService(env)

		req := submitReq()
		req.StudentID = "student-404"
		if _, err := svc.Submit(context.Background(), "teacher-1", req); !errors.Is(err, ErrStudentNotFound) {
			t.Fatalf("期望 ErrStudentNotFound，得到 %v", err)
		}
	})

	t.Run("补课时间早于缺课时间", func(t *testing.T) {
		env := newTestEnv()
		seedAbsenceWorld(env)
		svc := newTestAbsenceService(env)

		req := submitReq()
		req.MakeupDate = "2026-09-01T09:00:00Z"
		if _, err := svc.Submit(context.Background(), "teacher-1", req); !errors.Is(err, ErrMakeupBeforeAbsence) {
			t.Fatalf("期望 ErrMakeupBeforeAbsence，得到 %v", err)
		}
	})

	t.Run("日期格式非法", func(t *testing.T) {
		env := newTestEnv()
		seedAbsenceWorld(env)
		svc := newTestAbsenceService(env)

		req := submitReq()
		req.AbsenceDate = "2026/09/10"
		if _, err := svc.Submit(context.Background(), "teacher-1", req); !errors.Is(err, ErrDateFormat) {
			t.Fatalf("期望 ErrDateFormat，得到 %v", err)
		}
	})
}

func TestAbsenceApprove(t *testing.T) {
	env := newTestEnv()
	seedAbsenceWorld(env)
	svc := newTestAbsenceService(env)
	ctx := context.Background()

	submitted, err := svc.Submit(ctx, "teacher-1", submitReq())
	if err != nil {
		t.Fatalf("提交失败：%v", err)
	}

	resp, err := svc.Approve(ctx, submitted.ID, "direction-1", model.RoleDirection)
	if err != nil {
		t.Fatalf("不期望出错，得到 %v", err)
	}
	if resp.Status != model.AbsenceStatusApproved {
		t.Errorf("状态期望 approved，得到 %s", resp.Status)
	}
	if resp.MakeupStatus != model.MakeupStatusConfirmed {
		t.Errorf("补课状态期望 confirmed，得到 %s", resp.MakeupStatus)
	}
	if resp.DecidedBy != "direction-1" {
		t.Errorf("审批人期望 direction-1，得到 %s", resp.DecidedBy)
	}
	if resp.DecidedAt == "" {
		t.Errorf("审批时间未写入")
	}

	// 教师与家长各收到恰好一条通知
	if got := len(env.notifications.byUser("teacher-1")); got != 1 {
		t.Errorf("教师通知期望 1 条，得到 %d", got)
	}
	if got := len(env.notifications.byUser("parent-1")); got != 1 {
		t.Errorf("家长通知期望 1 条，得到 %d", got)
	}
	for _, n := range env.notifications.byUser("teacher-1") {
		if n.TemplateKey != model.TemplateAbsenceApproved {
			t.Errorf("通知模板期望 absence_approved，得到 %s", n.TemplateKey)
		}
	}

	// 终态不可再审批
	if _, err := svc.Approve(ctx, submitted.ID, "direction-1", model.RoleDirection); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("重复批准期望 ErrInvalidTransition，得到 %v", err)
	}
	if _, err := svc.Reject(ctx, submitted.ID, "direction-1", model.RoleDirection, "理由"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("批准后驳回期望 ErrInvalidTransition，得到 %v", err)
	}

	// 重复审批不追加通知
	if got := len(env.notifications.byUser("teacher-1")); got != 1 {
		t.Errorf("重复审批后教师通知仍期望 1 条，得到 %d", got)
	}
}

func TestAbsenceReject(t *testing.T) {
	env := newTestEnv()
	seedAbsenceWorld(env)
	svc := newTestAbsenceService(env)
	ctx := context.Background()

	submitted, err := svc.Submit(ctx, "teacher-1", submitReq())
	if err != nil {
		t.Fatalf("提交失败：%v", err)
	}

	t.Run("驳回缺少理由", func(t *testing.T) {
		if _, err := svc.Reject(ctx, submitted.ID, "direction-1", model.RoleDirection, ""); !errors.Is(err, ErrRejectReasonRequired) {
			t.Fatalf("期望 ErrRejectReasonRequired，得到 %v", err)
		}
		// 失败后报告保持待审批
		got, err := svc.GetByID(ctx, submitted.ID, "direction-1", model.RoleDirection)
		if err != nil {
			t.Fatalf("查询失败：%v", err)
		}
		if got.Status != model.AbsenceStatusPending {
			t.Errorf("失败后状态期望 pending，得到 %s", got.Status)
		}
	})

	t.Run("教师无权审批", func(t *testing.T) {
		if _, err := svc.Reject(ctx, submitted.ID, "teacher-1", model.RoleTeacher, "理由"); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("期望 ErrInvalidTransition，得到 %v", err)
		}
	})

	t.Run("驳回成功", func(t *testing.T) {
		resp, err := svc.Reject(ctx, submitted.ID, "direction-1", model.RoleDirection, "补课时间与校历冲突")
		if err != nil {
			t.Fatalf("不期望出错，得到 %v", err)
		}
		if resp.Status != model.AbsenceStatusRejected {
			t.Errorf("状态期望 rejected，得到 %s", resp.Status)
		}
		if resp.MakeupStatus != model.MakeupStatusCancelled {
			t.Errorf("补课状态期望 cancelled，得到 %s", resp.MakeupStatus)
		}
		if resp.RejectReason != "补课时间与校历冲突" {
			t.Errorf("驳回理由未写入，得到 %q", resp.RejectReason)
		}

		for _, n := range env.notifications.byUser("parent-1") {
			if n.TemplateKey != model.TemplateAbsenceRejected {
				t.Errorf("通知模板期望 absence_rejected，得到 %s", n.TemplateKey)
			}
		}
	})

	t.Run("报告不存在", func(t *testing.T) {
		if _, err := svc.Reject(ctx, "report-404", "direction-1", model.RoleDirection, "理由"); !errors.Is(err, ErrReportNotFound) {
			t.Fatalf("期望 ErrReportNotFound，得到 %v", err)
		}
	})
}

// 并发对同一份待审批报告同时批准与驳回：恰好一方胜出，
// 败方得到 ErrInvalidTransition，报告落在唯一终态
func TestAbsenceConcurrentDecision(t *testing.T) {
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		env := newTestEnv()
		seedAbsenceWorld(env)
		svc := newTestAbsenceService(env)

		submitted, err := svc.Submit(ctx, "teacher-1", submitReq())
		if err != nil {
			t.Fatalf("提交失败：%v", err)
		}

		var wg sync.WaitGroup
		errs := make([]error, 2)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, errs[0] = svc.Approve(ctx, submitted.ID, "direction-1", model.RoleDirection)
		}()
		go func() {
			defer wg.Done()
			_, errs[1] = svc.Reject(ctx, submitted.ID, "direction-1", model.RoleDirection, "时间冲突")
		}()
		wg.Wait()

		winners := 0
		for _, e := range errs {
			switch {
			case e == nil:
				winners++
			case errors.Is(e, ErrInvalidTransition):
			default:
				t.Fatalf("败方期望 ErrInvalidTransition，得到 %v", e)
			}
		}
		if winners != 1 {
			t.Fatalf("并发审批期望恰好一方成功，得到 %d", winners)
		}

		got, err := svc.GetByID(ctx, submitted.ID, "direction-1", model.RoleDirection)
		if err != nil {
			t.Fatalf("查询失败：%v", err)
		}
		if got.Status == model.AbsenceStatusPending {
			t.Fatalf("并发审批后不应仍为待审批")
		}
	}
}

func TestAbsenceVisibility(t *testing.T) {
	env := newTestEnv()
	seedAbsenceWorld(env)
	env.seedUser("teacher-2", "Bamba", model.RoleTeacher)
	env.seedUser("parent-2", "Traoré", model.RoleParent)
	svc := newTestAbsenceService(env)
	ctx := context.Background()

	submitted, err := svc.Submit(ctx, "teacher-1", submitReq())
	if err != nil {
		t.Fatalf("提交失败：%v", err)
	}

	tests := []struct {
		name    string
		actorID string
		role    string
		wantErr error
	}{
		{name: "校方可见", actorID: "direction-1", role: model.RoleDirection},
		{name: "提交教师可见", actorID: "teacher-1", role: model.RoleTeacher},
		{name: "学生家长可见", actorID: "parent-1", role: model.RoleParent},
		{name: "其他教师不可见", actorID: "teacher-2", role: model.RoleTeacher, wantErr: ErrForbidden},
		{name: "其他家长不可见", actorID: "parent-2", role: model.RoleParent, wantErr: ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.GetByID(ctx, submitted.ID, tt.actorID, tt.role)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("期望错误 %v，得到 %v", tt.wantErr, err)
			}
		})
	}

	t.Run("列表按角色过滤", func(t *testing.T) {
		mine, err := svc.List(ctx, "teacher-1", model.RoleTeacher, "", "")
		if err != nil {
			t.Fatalf("查询失败：%v", err)
		}
		if len(mine) != 1 {
			t.Errorf("提交教师列表期望 1 条，得到 %d", len(mine))
		}
		others, err := svc.List(ctx, "teacher-2", model.RoleTeacher, "", "")
		if err != nil {
			t.Fatalf("查询失败：%v", err)
		}
		if len(others) != 0 {
			t.Errorf("其他教师列表期望 0 条，得到 %d", len(others))
		}
		parents, err := svc.List(ctx, "parent-1", model.RoleParent, "", "")
		if err != nil {
			t.Fatalf("查询失败：%v", err)
		}
		if len(parents) != 1 {
			t.Errorf("家长列表期望 1 条，得到 %d", len(parents))
		}
	})
}
