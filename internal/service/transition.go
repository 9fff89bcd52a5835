package service

import (
	"errors"

	"school-link/internal/model"
)

// ── 状态机公共业务错误 ──

var (
	ErrInvalidTransition    = errors.New("当前状态或角色不允许该操作")
	ErrTeacherNotInterested = errors.New("该教师未报名此需求")
	ErrAlreadyResolved      = errors.New("需求已终结，不可再变更")
	ErrRejectReasonRequired = errors.New("驳回必须填写理由")
)

// ── 迁移命令常量 ──

const (
	CmdApprove          = "approve"
	CmdReject           = "reject"
	CmdExpressInterest  = "express_interest"
	CmdWithdrawInterest = "withdraw_interest"
	CmdAssign           = "assign"
	CmdMarkTaken        = "mark_taken"
)

// 缺课报告状态图：
//
//	pending ──► approved   （补课 confirmed）
//	    │
//	    └─────► rejected   （补课 cancelled）
//
// approved / rejected 为终态，无任何出边。
//
// 市场需求状态图：
//
//	available ──► taken    （assign / mark_taken）
//	    │
//	    └───────► expired  （过期扫描）
//
// taken / expired 为终态。报名/撤销意向不改变状态，仅在 available 下允许。

// absenceDecision 缺课报告审批的纯校验函数。
// 返回审批后的报告状态与补课状态；任何非法组合返回类型化错误，不产生副作用。
// 这是唯一允许计算缺课报告下一状态的代码路径。
func absenceDecision(report *model.AbsenceReport, command, actorRole, rejectReason string) (nextStatus, nextMakeup string, err error) {
	if actorRole != model.RoleDirection {
		return "", "", ErrInvalidTransition
	}
	if report.IsTerminal() {
		return "", "", ErrInvalidTransition
	}

	switch command {
	case CmdApprove:
		return model.AbsenceStatusApproved, model.MakeupStatusConfirmed, nil
	case CmdReject:
		if rejectReason == "" {
			return "", "", ErrRejectReasonRequired
		}
		return model.AbsenceStatusRejected, model.MakeupStatusCancelled, nil
	default:
		return "", "", ErrInvalidTransition
	}
}

// offerCommandAllowed 市场需求命令的纯校验函数。
// 只检查 状态 × 角色 × 命令 的合法性；意向集成员资格由 Matching 侧判断。
func offerCommandAllowed(offer *model.MarketOffer, command, actorRole string) error {
	switch command {
	case CmdExpressInterest, CmdWithdrawInterest:
		if actorRole != model.RoleTeacher {
			return ErrInvalidTransition
		}
		if offer.IsTerminal() {
			return ErrInvalidTransition
		}
		return nil

	case CmdAssign, CmdMarkTaken:
		if actorRole != model.RoleDirection {
			return ErrInvalidTransition
		}
		if offer.IsTerminal() {
			return ErrAlreadyResolved
		}
		return nil

	default:
		return ErrInvalidTransition
	}
}
