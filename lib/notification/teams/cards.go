package teams

import (
	"fmt"
	"sort"

	"jml-lite/lib/utils/helpers"
	"jml-lite/models"
	notificationapimodels "jml-lite/models/api/notification"
)

const (
	cardSchema          = "http://adaptivecards.io/schemas/adaptive-card.json"
	cardVersion         = "1.4"
	adaptiveContentType = "application/vnd.microsoft.card.adaptive"

	StyleDefault   = "default"
	StyleEmphasis  = "emphasis"
	StyleGood      = "good"
	StyleAttention = "attention"
	StyleWarning   = "warning"
)

type AdaptiveCard struct {
	Schema  string    `json:"$schema"`
	Type    string    `json:"type"`
	Version string    `json:"version"`
	Body    []Element `json:"body"`
	Actions []Action  `json:"actions,omitempty"`
	MSTeams *MSTeams  `json:"msteams,omitempty"`
}

type MSTeams struct {
	Width string `json:"width"`
}

// Element TextBlock, Container или FactSet
type Element struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	Size     string    `json:"size,omitempty"`
	Weight   string    `json:"weight,omitempty"`
	Color    string    `json:"color,omitempty"`
	Wrap     bool      `json:"wrap,omitempty"`
	IsSubtle bool      `json:"isSubtle,omitempty"`
	Spacing  string    `json:"spacing,omitempty"`
	Style    string    `json:"style,omitempty"`
	Bleed    bool      `json:"bleed,omitempty"`
	Items    []Element `json:"items,omitempty"`
	Facts    []Fact    `json:"facts,omitempty"`
}

type Fact struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

type Action struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

type Envelope struct {
	Type        string       `json:"type"`
	Attachments []Attachment `json:"attachments"`
}

type Attachment struct {
	ContentType string       `json:"contentType"`
	ContentURL  *string      `json:"contentUrl"`
	Content     AdaptiveCard `json:"content"`
}

func NewEnvelope(card AdaptiveCard) Envelope {
	return Envelope{
		Type: "message",
		Attachments: []Attachment{
			{
				ContentType: adaptiveContentType,
				Content:     card,
			},
		},
	}
}

func PriorityIcon(priority string) string {
	switch priority {
	case string(models.ApprovalPriorityLow):
		return "🟢"
	case string(models.ApprovalPriorityMedium):
		return "🟡"
	case string(models.ApprovalPriorityHigh):
		return "🟠"
	case string(models.ApprovalPriorityUrgent):
		return "🔴"
	}
	return "⚪"
}

func priorityFact(priority string) Fact {
	return Fact{Title: "Приоритет", Value: fmt.Sprintf("%s %s", PriorityIcon(priority), priority)}
}

func effectiveDateTitle(kind models.ProcessType) string {
	switch kind {
	case models.ProcessMover:
		return "Дата перевода"
	case models.ProcessOffboarding:
		return "Последний рабочий день"
	}
	return "Дата выхода"
}

func BuildTaskCard(n notificationapimodels.TaskNotification) AdaptiveCard {
	style := StyleEmphasis
	header := "📋 Назначена задача"
	switch n.Kind {
	case notificationapimodels.TaskOverdue:
		style = StyleAttention
		header = "⏰ Задача просрочена"
	case notificationapimodels.TaskDueToday:
		style = StyleWarning
		header = "📅 Срок задачи сегодня"
	case notificationapimodels.TaskCompleted:
		style = StyleGood
		header = "✅ Задача выполнена"
	}

	dueValue := helpers.FormatDate(n.DueDate)
	if n.Kind == notificationapimodels.TaskOverdue {
		dueValue = fmt.Sprintf("⚠️ %s (просрочено на %d дн.)", dueValue, n.DaysOverdue)
	}
	facts := []Fact{
		{Title: "Сотрудник", Value: n.EmployeeName},
		{Title: "Процесс", Value: n.ProcessType.Title()},
	}
	if n.Category != "" {
		facts = append(facts, Fact{Title: "Категория", Value: n.Category})
	}
	facts = append(facts,
		priorityFact(string(models.NormalizeTaskPriority(n.Priority))),
		Fact{Title: "Срок", Value: dueValue},
	)
	if n.AssigneeName != "" {
		facts = append(facts, Fact{Title: "Исполнитель", Value: n.AssigneeName})
	}
	if n.CompletedBy != "" {
		facts = append(facts, Fact{Title: "Выполнил", Value: n.CompletedBy})
	}

	body := []Element{
		headerContainer(header, style),
		{Type: "TextBlock", Text: n.TaskTitle, Size: "Medium", Weight: "Bolder", Wrap: true},
		{Type: "FactSet", Facts: facts},
	}
	if n.Notes != "" {
		body = append(body, Element{Type: "TextBlock", Text: n.Notes, Wrap: true, IsSubtle: true})
	}
	return newCard(body, openAction("Открыть задачу", n.Link))
}

func BuildApprovalCard(n notificationapimodels.ApprovalNotification) AdaptiveCard {
	style := StyleEmphasis
	header := "🔔 Требуется согласование"
	if n.Kind == notificationapimodels.ApprovalDecision {
		switch n.Status {
		case models.ApprovalApproved:
			style = StyleGood
			header = "✅ Запрос согласован"
		case models.ApprovalRejected:
			style = StyleAttention
			header = "❌ Запрос отклонён"
		default:
			header = fmt.Sprintf("ℹ️ Статус запроса: %s", n.Status)
		}
	}
	facts := []Fact{
		{Title: "Тип", Value: string(n.ApprovalType)},
		priorityFact(string(n.Priority)),
		{Title: "Инициатор", Value: n.RequestedByName},
	}
	if n.Kind == notificationapimodels.ApprovalDecision {
		facts = append(facts, Fact{Title: "Решение принял", Value: n.DecisionByName})
		if n.Comments != "" {
			facts = append(facts, Fact{Title: "Комментарий", Value: n.Comments})
		}
	} else {
		facts = append(facts,
			Fact{Title: "Согласующий", Value: n.ApproverName},
			Fact{Title: "Срок", Value: helpers.FormatDate(n.DueDate)},
		)
	}
	body := []Element{
		headerContainer(header, style),
		{Type: "TextBlock", Text: n.Title, Size: "Medium", Weight: "Bolder", Wrap: true},
	}
	if n.Description != "" {
		body = append(body, Element{Type: "TextBlock", Text: n.Description, Wrap: true})
	}
	body = append(body, Element{Type: "FactSet", Facts: facts})
	return newCard(body, openAction("Открыть запрос", n.Link))
}

func BuildProcessCard(n notificationapimodels.ProcessNotification) AdaptiveCard {
	style := StyleEmphasis
	header := fmt.Sprintf("🚀 Начат процесс: %s", n.ProcessType.Title())
	if n.Kind == notificationapimodels.ProcessCompleted {
		style = StyleGood
		header = fmt.Sprintf("🎉 Процесс завершён: %s", n.ProcessType.Title())
	}
	facts := []Fact{
		{Title: "Сотрудник", Value: n.EmployeeName},
		{Title: "Должность", Value: n.JobTitle},
		{Title: "Подразделение", Value: n.Department},
	}
	if n.ProcessType == models.ProcessMover && n.TargetDepartment != "" {
		facts = append(facts, Fact{Title: "Новое подразделение", Value: n.TargetDepartment})
	}
	facts = append(facts,
		Fact{Title: "Руководитель", Value: n.ManagerName},
		Fact{Title: effectiveDateTitle(n.ProcessType), Value: helpers.FormatDate(n.EffectiveDate)},
	)
	if n.TaskCount > 0 {
		facts = append(facts, Fact{Title: "Задач", Value: fmt.Sprint(n.TaskCount)})
	}
	body := []Element{
		headerContainer(header, style),
		{Type: "FactSet", Facts: facts},
	}
	return newCard(body, openAction("Открыть карточку", n.Link))
}

func BuildGeneralCard(n notificationapimodels.GeneralNotification) AdaptiveCard {
	style := StyleDefault
	if n.Priority == models.ApprovalPriorityUrgent {
		style = StyleAttention
	}
	body := []Element{
		headerContainer(fmt.Sprintf("%s %s", PriorityIcon(string(n.Priority)), n.Title), style),
		{Type: "TextBlock", Text: n.Message, Wrap: true},
	}
	if len(n.Facts) > 0 {
		keys := make([]string, 0, len(n.Facts))
		for key := range n.Facts {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		facts := make([]Fact, 0, len(keys))
		for _, key := range keys {
			facts = append(facts, Fact{Title: key, Value: n.Facts[key]})
		}
		body = append(body, Element{Type: "FactSet", Facts: facts})
	}
	return newCard(body, openAction("Открыть", n.Link))
}

func headerContainer(text, style string) Element {
	return Element{
		Type:  "Container",
		Style: style,
		Bleed: true,
		Items: []Element{
			{Type: "TextBlock", Text: text, Size: "Large", Weight: "Bolder", Wrap: true},
		},
	}
}

func openAction(title, link string) []Action {
	if link == "" {
		return nil
	}
	return []Action{{Type: "Action.OpenUrl", Title: title, URL: link}}
}

func newCard(body []Element, actions []Action) AdaptiveCard {
	return AdaptiveCard{
		Schema:  cardSchema,
		Type:    "AdaptiveCard",
		Version: cardVersion,
		Body:    body,
		Actions: actions,
		MSTeams: &MSTeams{Width: "Full"},
	}
}
