package approval

import (
	"context"
	"time"

	"jml-lite/db"
	approvalstore "jml-lite/lib/approval/store"
	audittrail "jml-lite/lib/audit-trail"
	authutils "jml-lite/lib/utils/auth-utils"
	"jml-lite/lib/utils/helpers"
	"jml-lite/lib/utils/lock"
	"jml-lite/models"
	approvalapimodels "jml-lite/models/api/approval"
	auditapimodels "jml-lite/models/api/audit"
	dbmodels "jml-lite/models/db"

	log "github.com/sirupsen/logrus"
)

const (
	expireLockKey  = "approval-expire"
	expireLockWait = 10 * time.Second
)

// dueSoonDays окно "скоро срок" в статистике, после сегодняшнего дня
const dueSoonDays = 3

// Provider сервис согласований. Ошибки хранилища логируются, наружу отдаётся пустой результат
type Provider interface {
	GetApprovals(filter approvalapimodels.ApprovalFilter) []approvalapimodels.ApprovalView
	GetApproval(id uint) *approvalapimodels.ApprovalView
	GetPendingForApprover(approverID uint) []approvalapimodels.ApprovalView
	CreateApproval(ctx context.Context, request approvalapimodels.ApprovalRequest) *approvalapimodels.ApprovalView
	ProcessApproval(ctx context.Context, action approvalapimodels.ApprovalAction) bool
	Approve(ctx context.Context, id uint, comments, approverName string, approverID uint) bool
	Reject(ctx context.Context, id uint, reason, approverName string, approverID uint) bool
	GetApprovalStats(approverID *uint) approvalapimodels.ApprovalStats
	HasPendingApproval(relatedItemID uint, relatedItemType models.RelatedItemType) bool
	ExpireOverdueApprovals(ctx context.Context) int
}

var Instance Provider

func NewHandler() {
	Instance = NewProvider(approvalstore.NewInstance(db.DB), audittrail.Instance, time.Now)
}

func NewProvider(store approvalstore.Provider, audit audittrail.Provider, now func() time.Time) Provider {
	return impl{
		store: store,
		audit: audit,
		now:   now,
	}
}

type impl struct {
	store approvalstore.Provider
	audit audittrail.Provider
	now   func() time.Time
}

func (i impl) getLogger(approvalID uint) *log.Entry {
	logger := log.WithField("approval_id", approvalID)
	return logger
}

func (i impl) GetApprovals(filter approvalapimodels.ApprovalFilter) []approvalapimodels.ApprovalView {
	list, err := i.store.List(filter)
	if err != nil {
		log.WithError(err).Error("ошибка получения списка согласований")
		return []approvalapimodels.ApprovalView{}
	}
	return toViews(list)
}

func (i impl) GetApproval(id uint) *approvalapimodels.ApprovalView {
	rec, err := i.store.GetByID(id)
	if err != nil {
		i.getLogger(id).WithError(err).Error("ошибка получения запроса на согласование")
		return nil
	}
	if rec == nil {
		return nil
	}
	view := rec.ToModelView()
	return &view
}

func (i impl) GetPendingForApprover(approverID uint) []approvalapimodels.ApprovalView {
	return i.GetApprovals(approvalapimodels.ApprovalFilter{
		Statuses:   []models.ApprovalStatus{models.ApprovalPending},
		ApproverID: &approverID,
	})
}

func (i impl) CreateApproval(ctx context.Context, request approvalapimodels.ApprovalRequest) *approvalapimodels.ApprovalView {
	priority := request.Priority
	if priority == "" {
		priority = models.ApprovalPriorityMedium
	}
	rec := dbmodels.Approval{
		Title:            request.Title,
		Description:      request.Description,
		ApprovalType:     request.ApprovalType,
		Status:           models.ApprovalPending,
		Priority:         priority,
		RelatedItemID:    request.RelatedItemID,
		RelatedItemType:  request.RelatedItemType,
		RequestedByID:    request.RequestedByID,
		RequestedByName:  request.RequestedByName,
		RequestedByEmail: request.RequestedByEmail,
		RequestedDate:    i.now(),
		ApproverID:       request.ApproverID,
		ApproverName:     request.ApproverName,
		ApproverEmail:    request.ApproverEmail,
		DueDate:          request.DueDate,
	}
	if rec.RequestedByID == 0 {
		if user, ok := authutils.UserFromContext(ctx); ok {
			rec.RequestedByID = user.ID
			rec.RequestedByName = user.Name
			rec.RequestedByEmail = user.Email
		}
	}
	id, err := i.store.Create(rec)
	if err != nil {
		log.WithError(err).WithField("title", rec.Title).Error("ошибка создания запроса на согласование")
		return nil
	}
	rec.ID = id
	i.log(ctx, rec, models.AuditApprovalRequested, map[string]any{
		"approver": rec.ApproverName,
		"priority": rec.Priority,
		"due_date": rec.DueDate,
	})
	view := rec.ToModelView()
	return &view
}

func (i impl) ProcessApproval(ctx context.Context, action approvalapimodels.ApprovalAction) bool {
	logger := i.getLogger(action.ApprovalID).WithField("action", action.Action)
	if err := action.Validate(); err != nil {
		logger.WithError(err).Warn("некорректное действие по согласованию")
		return false
	}
	rec, err := i.store.GetByID(action.ApprovalID)
	if err != nil {
		logger.WithError(err).Error("ошибка получения запроса на согласование")
		return false
	}
	if rec == nil {
		logger.Warn("запрос на согласование не найден")
		return false
	}
	if rec.Status.IsTerminal() {
		logger.WithField("status", rec.Status).Warn("запрос на согласование уже закрыт")
		return false
	}
	if action.ActorID == 0 && action.ActorName == "" {
		if user, ok := authutils.UserFromContext(ctx); ok {
			action.ActorID = user.ID
			action.ActorName = user.Name
		}
	}

	now := i.now()
	updMap := map[string]interface{}{}
	switch action.Action {
	case models.ApprovalActionApprove:
		updMap["status"] = models.ApprovalApproved
		updMap["decision_date"] = now
		updMap["decision_by_id"] = action.ActorID
		updMap["decision_by_name"] = action.ActorName
		updMap["comments"] = action.Comments
	case models.ApprovalActionReject:
		reason := action.RejectionReason
		if reason == "" {
			reason = action.Comments
		}
		updMap["status"] = models.ApprovalRejected
		updMap["decision_date"] = now
		updMap["decision_by_id"] = action.ActorID
		updMap["decision_by_name"] = action.ActorName
		updMap["comments"] = action.Comments
		updMap["rejection_reason"] = reason
	case models.ApprovalActionDelegate:
		updMap["approver_id"] = action.DelegateToID
		updMap["approver_name"] = action.DelegateToName
		updMap["approver_email"] = action.DelegateToEmail
		updMap["delegated_to_id"] = action.DelegateToID
		updMap["delegated_to_name"] = action.DelegateToName
		updMap["delegated_date"] = now
	case models.ApprovalActionCancel:
		updMap["status"] = models.ApprovalCancelled
		updMap["comments"] = action.Comments
	}
	err = i.store.Update(rec.ID, updMap)
	if err != nil {
		logger.WithError(err).Error("ошибка обновления запроса на согласование")
		return false
	}
	i.log(ctx, *rec, models.AuditApprovalDecided, map[string]any{
		"action":   action.Action,
		"actor":    action.ActorName,
		"comments": action.Comments,
	})
	return true
}

func (i impl) Approve(ctx context.Context, id uint, comments, approverName string, approverID uint) bool {
	return i.ProcessApproval(ctx, approvalapimodels.ApprovalAction{
		ApprovalID: id,
		Action:     models.ApprovalActionApprove,
		Comments:   comments,
		ActorID:    approverID,
		ActorName:  approverName,
	})
}

func (i impl) Reject(ctx context.Context, id uint, reason, approverName string, approverID uint) bool {
	return i.ProcessApproval(ctx, approvalapimodels.ApprovalAction{
		ApprovalID:      id,
		Action:          models.ApprovalActionReject,
		Comments:        reason,
		RejectionReason: reason,
		ActorID:         approverID,
		ActorName:       approverName,
	})
}

func (i impl) GetApprovalStats(approverID *uint) approvalapimodels.ApprovalStats {
	stats := approvalapimodels.ApprovalStats{}
	list, err := i.store.List(approvalapimodels.ApprovalFilter{ApproverID: approverID})
	if err != nil {
		log.WithError(err).Error("ошибка получения статистики согласований")
		return stats
	}
	today := helpers.StartOfDay(i.now())
	for _, rec := range list {
		stats.Total++
		switch rec.Status {
		case models.ApprovalApproved:
			stats.Approved++
		case models.ApprovalRejected:
			stats.Rejected++
		case models.ApprovalPending:
			stats.Pending++
		}
		if rec.Status != models.ApprovalPending || rec.DueDate == nil {
			continue
		}
		days := helpers.DaysBetween(today, rec.DueDate.In(today.Location()))
		switch {
		case days < 0:
			stats.Overdue++
		case days == 0:
			stats.DueToday++
		case days <= dueSoonDays:
			stats.DueSoon++
		}
	}
	return stats
}

func (i impl) HasPendingApproval(relatedItemID uint, relatedItemType models.RelatedItemType) bool {
	exists, err := i.store.ExistsPending(relatedItemID, relatedItemType)
	if err != nil {
		log.
			WithError(err).
			WithField("related_item_id", relatedItemID).
			WithField("related_item_type", relatedItemType).
			Error("ошибка проверки открытых согласований")
		return false
	}
	return exists
}

// ExpireOverdueApprovals переводит просроченные ожидающие запросы в Expired, повторный вызов ничего не меняет
// ExpireOverdueApprovals воркер и ручной запуск через API не выполняются одновременно
func (i impl) ExpireOverdueApprovals(ctx context.Context) int {
	count := 0
	ok, err := lock.WithDelay(ctx, expireLockKey, expireLockWait, func() error {
		count = i.expireOverdue(ctx)
		return nil
	})
	if err != nil || !ok {
		log.Warn("закрытие просроченных согласований уже выполняется")
	}
	return count
}

func (i impl) expireOverdue(ctx context.Context) int {
	list, err := i.store.ListPendingOverdue(i.now())
	if err != nil {
		log.WithError(err).Error("ошибка поиска просроченных согласований")
		return 0
	}
	count := 0
	for _, rec := range list {
		err = i.store.Update(rec.ID, map[string]interface{}{"status": models.ApprovalExpired})
		if err != nil {
			i.getLogger(rec.ID).WithError(err).Error("ошибка перевода согласования в просроченные")
			continue
		}
		count++
		i.log(ctx, rec, models.AuditApprovalExpired, map[string]any{"due_date": rec.DueDate})
	}
	if count > 0 {
		log.WithField("count", count).Info("просроченные согласования закрыты")
	}
	return count
}

func (i impl) log(ctx context.Context, rec dbmodels.Approval, action models.AuditAction, details any) {
	if i.audit == nil {
		return
	}
	i.audit.Log(ctx, auditapimodels.Activity{
		Action:      action,
		EntityType:  models.EntityApproval,
		EntityID:    rec.ID,
		EntityTitle: rec.Title,
		Details:     details,
	})
}

func toViews(list []dbmodels.Approval) []approvalapimodels.ApprovalView {
	result := make([]approvalapimodels.ApprovalView, 0, len(list))
	for _, rec := range list {
		result = append(result, rec.ToModelView())
	}
	return result
}
