package graph

import (
	"context"
	"fmt"

	audittrail "jml-lite/lib/audit-trail"
	"jml-lite/lib/utils/helpers"
	"jml-lite/models"
	auditapimodels "jml-lite/models/api/audit"
	notificationapimodels "jml-lite/models/api/notification"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const channelName = "email"

var ErrNoTransport = errors.New("почтовый транспорт не настроен, письмо поставлено в очередь")

// Provider почтовые уведомления. Результат false означает, что письмо не отправлено и записано в журнал как queued
type Provider interface {
	SendEmail(ctx context.Context, msg notificationapimodels.EmailMessage) bool
	SendTaskAssignedEmail(ctx context.Context, n notificationapimodels.TaskNotification) bool
	SendTaskCompletedEmail(ctx context.Context, n notificationapimodels.TaskNotification, to []notificationapimodels.Recipient) bool
	SendTaskOverdueEmail(ctx context.Context, n notificationapimodels.TaskNotification) bool
	SendApprovalRequestEmail(ctx context.Context, n notificationapimodels.ApprovalNotification, to notificationapimodels.Recipient) bool
	SendApprovalDecisionEmail(ctx context.Context, n notificationapimodels.ApprovalNotification, to notificationapimodels.Recipient) bool
	SendProcessStartedEmail(ctx context.Context, n notificationapimodels.ProcessNotification, to []notificationapimodels.Recipient) bool
	SendProcessCompletedEmail(ctx context.Context, n notificationapimodels.ProcessNotification, to []notificationapimodels.Recipient) bool
}

var Instance Provider

// NewHandler transport может быть nil, тогда все письма уходят в очередь
func NewHandler(transport Transport) {
	Instance = NewProvider(transport, audittrail.Instance)
}

func NewProvider(transport Transport, audit audittrail.Provider) Provider {
	return impl{
		transport: transport,
		audit:     audit,
	}
}

type impl struct {
	transport Transport
	audit     audittrail.Provider
}

func (i impl) getLogger(msg notificationapimodels.EmailMessage) *log.Entry {
	return log.
		WithField("notification_channel", channelName).
		WithField("category", msg.Category).
		WithField("entity_id", msg.EntityID).
		WithField("subject", msg.Subject)
}

func (i impl) SendEmail(ctx context.Context, msg notificationapimodels.EmailMessage) bool {
	logger := i.getLogger(msg)
	var err error
	switch {
	case i.transport == nil:
		err = ErrNoTransport
	case len(recipientEmails(msg.To)) == 0:
		err = errors.New("не указаны получатели письма")
	default:
		err = i.transport.Send(ctx, msg)
	}
	details := auditapimodels.NotificationDetails{
		NotificationID: uuid.NewString(),
		Channel:        channelName,
		Category:       msg.Category,
		Recipients:     recipientEmails(append(append([]notificationapimodels.Recipient{}, msg.To...), msg.Cc...)),
		Subject:        msg.Subject,
	}
	action := models.AuditNotificationSent
	if err != nil {
		action = models.AuditNotificationQueued
		details.Error = err.Error()
		logger.WithError(err).Warn("письмо не отправлено")
	} else {
		logger.Info("письмо отправлено")
	}
	if i.audit != nil {
		i.audit.Log(ctx, auditapimodels.Activity{
			Action:      action,
			EntityType:  models.EntityNotification,
			EntityID:    msg.EntityID,
			EntityTitle: msg.Subject,
			Details:     details,
		})
	}
	return err == nil
}

func (i impl) SendTaskAssignedEmail(ctx context.Context, n notificationapimodels.TaskNotification) bool {
	data := emailData{
		Header:    "Вам назначена задача",
		Intro:     fmt.Sprintf("Здравствуйте, %s! Вам назначена задача «%s».", n.AssigneeName, n.TaskTitle),
		Facts:     taskFacts(n),
		Note:      n.Notes,
		Link:      n.Link,
		LinkTitle: "Открыть задачу",
	}
	return i.send(ctx, emailMeta{
		to:         []notificationapimodels.Recipient{{Name: n.AssigneeName, Email: n.AssigneeEmail}},
		subject:    fmt.Sprintf("Новая задача: %s", n.TaskTitle),
		importance: taskImportance(n.Priority),
		category:   string(notificationapimodels.TaskAssigned),
		entityID:   n.TaskID,
	}, data)
}

func (i impl) SendTaskCompletedEmail(ctx context.Context, n notificationapimodels.TaskNotification, to []notificationapimodels.Recipient) bool {
	data := emailData{
		Header:    "Задача выполнена",
		Intro:     fmt.Sprintf("Задача «%s» по сотруднику %s выполнена.", n.TaskTitle, n.EmployeeName),
		Facts:     append(taskFacts(n), fact{Title: "Выполнил", Value: n.CompletedBy}),
		Link:      n.Link,
		LinkTitle: "Открыть задачу",
		Accent:    accentGood,
	}
	return i.send(ctx, emailMeta{
		to:         to,
		subject:    fmt.Sprintf("Задача выполнена: %s", n.TaskTitle),
		importance: notificationapimodels.ImportanceNormal,
		category:   string(notificationapimodels.TaskCompleted),
		entityID:   n.TaskID,
	}, data)
}

func (i impl) SendTaskOverdueEmail(ctx context.Context, n notificationapimodels.TaskNotification) bool {
	data := emailData{
		Header:    "Задача просрочена",
		Intro:     fmt.Sprintf("Здравствуйте, %s! Срок задачи «%s» истёк %d дн. назад.", n.AssigneeName, n.TaskTitle, n.DaysOverdue),
		Facts:     taskFacts(n),
		Note:      "Пожалуйста, выполните задачу или обновите её статус.",
		Link:      n.Link,
		LinkTitle: "Открыть задачу",
		Accent:    accentDanger,
	}
	return i.send(ctx, emailMeta{
		to:         []notificationapimodels.Recipient{{Name: n.AssigneeName, Email: n.AssigneeEmail}},
		subject:    fmt.Sprintf("Просрочена задача: %s", n.TaskTitle),
		importance: notificationapimodels.ImportanceHigh,
		category:   string(notificationapimodels.TaskOverdue),
		entityID:   n.TaskID,
	}, data)
}

func (i impl) SendApprovalRequestEmail(ctx context.Context, n notificationapimodels.ApprovalNotification, to notificationapimodels.Recipient) bool {
	data := emailData{
		Header: "Требуется согласование",
		Intro:  fmt.Sprintf("Здравствуйте, %s! %s просит согласовать запрос «%s».", to.Name, n.RequestedByName, n.Title),
		Facts: []fact{
			{Title: "Тип", Value: string(n.ApprovalType)},
			{Title: "Приоритет", Value: string(n.Priority)},
			{Title: "Срок решения", Value: helpers.FormatDate(n.DueDate)},
		},
		Note:      n.Description,
		Link:      n.Link,
		LinkTitle: "Рассмотреть запрос",
	}
	importance := notificationapimodels.ImportanceNormal
	if n.Priority == models.ApprovalPriorityUrgent || n.Priority == models.ApprovalPriorityHigh {
		importance = notificationapimodels.ImportanceHigh
	}
	return i.send(ctx, emailMeta{
		to:         []notificationapimodels.Recipient{to},
		subject:    fmt.Sprintf("Требуется согласование: %s", n.Title),
		importance: importance,
		category:   string(notificationapimodels.ApprovalRequired),
		entityID:   n.ApprovalID,
	}, data)
}

func (i impl) SendApprovalDecisionEmail(ctx context.Context, n notificationapimodels.ApprovalNotification, to notificationapimodels.Recipient) bool {
	header := "Запрос согласован"
	accent := accentGood
	if n.Status != models.ApprovalApproved {
		header = "Запрос отклонён"
		accent = accentDanger
	}
	data := emailData{
		Header: header,
		Intro:  fmt.Sprintf("Здравствуйте, %s! По вашему запросу «%s» принято решение.", to.Name, n.Title),
		Facts: []fact{
			{Title: "Решение", Value: string(n.Status)},
			{Title: "Решение принял", Value: n.DecisionByName},
		},
		Note:      n.Comments,
		Link:      n.Link,
		LinkTitle: "Открыть запрос",
		Accent:    accent,
	}
	return i.send(ctx, emailMeta{
		to:         []notificationapimodels.Recipient{to},
		subject:    fmt.Sprintf("%s: %s", header, n.Title),
		importance: notificationapimodels.ImportanceNormal,
		category:   string(notificationapimodels.ApprovalDecision),
		entityID:   n.ApprovalID,
	}, data)
}

func (i impl) SendProcessStartedEmail(ctx context.Context, n notificationapimodels.ProcessNotification, to []notificationapimodels.Recipient) bool {
	data := emailData{
		Header:    fmt.Sprintf("Начат процесс «%s»", n.ProcessType.Title()),
		Intro:     fmt.Sprintf("Создана карточка процесса «%s» для сотрудника %s.", n.ProcessType.Title(), n.EmployeeName),
		Facts:     processFacts(n),
		Link:      n.Link,
		LinkTitle: "Открыть карточку",
	}
	return i.send(ctx, emailMeta{
		to:         to,
		subject:    fmt.Sprintf("Начат процесс «%s»: %s", n.ProcessType.Title(), n.EmployeeName),
		importance: notificationapimodels.ImportanceNormal,
		category:   string(notificationapimodels.ProcessStarted),
		entityID:   n.ProcessID,
	}, data)
}

func (i impl) SendProcessCompletedEmail(ctx context.Context, n notificationapimodels.ProcessNotification, to []notificationapimodels.Recipient) bool {
	data := emailData{
		Header:    fmt.Sprintf("Процесс «%s» завершён", n.ProcessType.Title()),
		Intro:     fmt.Sprintf("Все задачи процесса «%s» для сотрудника %s завершены.", n.ProcessType.Title(), n.EmployeeName),
		Facts:     processFacts(n),
		Link:      n.Link,
		LinkTitle: "Открыть карточку",
		Accent:    accentGood,
	}
	return i.send(ctx, emailMeta{
		to:         to,
		subject:    fmt.Sprintf("Процесс «%s» завершён: %s", n.ProcessType.Title(), n.EmployeeName),
		importance: notificationapimodels.ImportanceLow,
		category:   string(notificationapimodels.ProcessCompleted),
		entityID:   n.ProcessID,
	}, data)
}

type emailMeta struct {
	to         []notificationapimodels.Recipient
	subject    string
	importance notificationapimodels.EmailImportance
	category   string
	entityID   uint
}

func (i impl) send(ctx context.Context, meta emailMeta, data emailData) bool {
	htmlBody, textBody, err := render(data)
	if err != nil {
		log.WithError(err).WithField("category", meta.category).Error("ошибка формирования письма")
		return false
	}
	return i.SendEmail(ctx, notificationapimodels.EmailMessage{
		To:         meta.to,
		Subject:    meta.subject,
		HtmlBody:   htmlBody,
		TextBody:   textBody,
		Importance: meta.importance,
		Category:   meta.category,
		EntityID:   meta.entityID,
	})
}

func taskFacts(n notificationapimodels.TaskNotification) []fact {
	facts := []fact{
		{Title: "Сотрудник", Value: n.EmployeeName},
		{Title: "Процесс", Value: n.ProcessType.Title()},
	}
	if n.Category != "" {
		facts = append(facts, fact{Title: "Категория", Value: n.Category})
	}
	return append(facts,
		fact{Title: "Приоритет", Value: string(models.NormalizeTaskPriority(n.Priority))},
		fact{Title: "Срок", Value: helpers.FormatDate(n.DueDate)},
	)
}

func processFacts(n notificationapimodels.ProcessNotification) []fact {
	facts := []fact{
		{Title: "Сотрудник", Value: n.EmployeeName},
		{Title: "Должность", Value: n.JobTitle},
		{Title: "Подразделение", Value: n.Department},
	}
	if n.TargetDepartment != "" {
		facts = append(facts, fact{Title: "Новое подразделение", Value: n.TargetDepartment})
	}
	return append(facts,
		fact{Title: "Руководитель", Value: n.ManagerName},
		fact{Title: "Дата", Value: helpers.FormatDate(n.EffectiveDate)},
	)
}

func taskImportance(priority models.TaskPriority) notificationapimodels.EmailImportance {
	switch models.NormalizeTaskPriority(priority) {
	case models.TaskPriorityHigh:
		return notificationapimodels.ImportanceHigh
	case models.TaskPriorityLow:
		return notificationapimodels.ImportanceLow
	}
	return notificationapimodels.ImportanceNormal
}

func recipientEmails(list []notificationapimodels.Recipient) []string {
	result := make([]string, 0, len(list))
	for _, r := range list {
		if r.Email != "" {
			result = append(result, r.Email)
		}
	}
	return result
}
