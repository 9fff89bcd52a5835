package service

import (
	"errors"
	"testing"

	"school-link/internal/model"
)

func TestAbsenceDecision(t *testing.T) {
	tests := []struct {
		name       string
		status     string
		command    string
		role       string
		reason     string
		wantStatus string
		wantMakeup string
		wantErr    error
	}{
		{
			name: "校方批准待审批报告", status: model.AbsenceStatusPending,
			command: CmdApprove, role: model.RoleDirection,
			wantStatus: model.AbsenceStatusApproved, wantMakeup: model.MakeupStatusConfirmed,
		},
		{
			name: "校方驳回待审批报告", status: model.AbsenceStatusPending,
			command: CmdReject, role: model.RoleDirection, reason: "时间冲突",
			wantStatus: model.AbsenceStatusRejected, wantMakeup: model.MakeupStatusCancelled,
		},
		{
			name: "驳回缺少理由", status: model.AbsenceStatusPending,
			command: CmdReject, role: model.RoleDirection,
			wantErr: ErrRejectReasonRequired,
		},
		{
			name: "教师无审批权限", status: model.AbsenceStatusPending,
			command: CmdApprove, role: model.RoleTeacher,
			wantErr: ErrInvalidTransition,
		},
		{
			name: "家长无审批权限", status: model.AbsenceStatusPending,
			command: CmdReject, role: model.RoleParent, reason: "理由",
			wantErr: ErrInvalidTransition,
		},
		{
			name: "已批准报告不可再批准", status: model.AbsenceStatusApproved,
			command: CmdApprove, role: model.RoleDirection,
			wantErr: ErrInvalidTransition,
		},
		{
			name: "已驳回报告不可再批准", status: model.AbsenceStatusRejected,
			command: CmdApprove, role: model.RoleDirection,
			wantErr: ErrInvalidTransition,
		},
		{
			name: "已批准报告不可驳回", status: model.AbsenceStatusApproved,
			command: CmdReject, role: model.RoleDirection, reason: "理由",
			wantErr: ErrInvalidTransition,
		},
		{
			name: "未知命令", status: model.AbsenceStatusPending,
			command: "archive", role: model.RoleDirection,
			wantErr: ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := &model.AbsenceReport{Status: tt.status}
			gotStatus, gotMakeup, err := absenceDecision(report, tt.command, tt.role, tt.reason)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("期望错误 %v，得到 %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("不期望出错，得到 %v", err)
			}
			if gotStatus != tt.wantStatus {
				t.Errorf("状态期望 %s，得到 %s", tt.wantStatus, gotStatus)
			}
			if gotMakeup != tt.wantMakeup {
				t.Errorf("补课状态期望 %s，得到 %s", tt.wantMakeup, gotMakeup)
			}
		})
	}
}

func TestAbsenceDecisionPure(t *testing.T) {
	// 校验函数不得修改传入的报告
	report := &model.AbsenceReport{Status: model.AbsenceStatusPending, MakeupStatus: model.MakeupStatusPlanned}
	_, _, err := absenceDecision(report, CmdApprove, model.RoleDirection, "")
	if err != nil {
		t.Fatalf("不期望出错，得到 %v", err)
	}
	if report.Status != model.AbsenceStatusPending || report.MakeupStatus != model.MakeupStatusPlanned {
		t.Errorf("校验函数修改了报告状态：%s / %s", report.Status, report.MakeupStatus)
	}
}

func TestOfferCommandAllowed(t *testing.T) {
	tests := []struct {
		name    string
		status  string
		command string
		role    string
		wantErr error
	}{
		{name: "教师报名招募中需求", status: model.OfferStatusAvailable, command: CmdExpressInterest, role: model.RoleTeacher},
		{name: "教师撤销招募中需求", status: model.OfferStatusAvailable, command: CmdWithdrawInterest, role: model.RoleTeacher},
		{name: "校方指派招募中需求", status: model.OfferStatusAvailable, command: CmdAssign, role: model.RoleDirection},
		{name: "校方直接成交招募中需求", status: model.OfferStatusAvailable, command: CmdMarkTaken, role: model.RoleDirection},
		{name: "校方不可报名", status: model.OfferStatusAvailable, command: CmdExpressInterest, role: model.RoleDirection, wantErr: ErrInvalidTransition},
		{name: "家长不可报名", status: model.OfferStatusAvailable, command: CmdExpressInterest, role: model.RoleParent, wantErr: ErrInvalidTransition},
		{name: "教师不可指派", status: model.OfferStatusAvailable, command: CmdAssign, role: model.RoleTeacher, wantErr: ErrInvalidTransition},
		{name: "已成交需求不可报名", status: model.OfferStatusTaken, command: CmdExpressInterest, role: model.RoleTeacher, wantErr: ErrInvalidTransition},
		{name: "已过期需求不可报名", status: model.OfferStatusExpired, command: CmdExpressInterest, role: model.RoleTeacher, wantErr: ErrInvalidTransition},
		{name: "已成交需求不可再指派", status: model.OfferStatusTaken, command: CmdAssign, role: model.RoleDirection, wantErr: ErrAlreadyResolved},
		{name: "已过期需求不可成交", status: model.OfferStatusExpired, command: CmdMarkTaken, role: model.RoleDirection, wantErr: ErrAlreadyResolved},
		{name: "未知命令", status: model.OfferStatusAvailable, command: "cancel", role: model.RoleDirection, wantErr: ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offer := &model.MarketOffer{Status: tt.status}
			err := offerCommandAllowed(offer, tt.command, tt.role)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("期望错误 %v，得到 %v", tt.wantErr, err)
			}
		})
	}
}
