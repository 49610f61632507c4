package notificationapimodels

import (
	"jml-lite/models"
	"time"
)

type Recipient struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type TaskNotificationKind string

const (
	TaskAssigned  TaskNotificationKind = "TaskAssigned"
	TaskOverdue   TaskNotificationKind = "TaskOverdue"
	TaskDueToday  TaskNotificationKind = "TaskDueToday"
	TaskCompleted TaskNotificationKind = "TaskCompleted"
)

type TaskNotification struct {
	Kind          TaskNotificationKind
	TaskID        uint
	TaskTitle     string
	Category      string
	ProcessType   models.ProcessType
	ProcessID     uint
	EmployeeName  string
	AssigneeName  string
	AssigneeEmail string
	Priority      models.TaskPriority
	DueDate       *time.Time
	DaysOverdue   int
	CompletedBy   string
	Notes         string
	Link          string
}

type ApprovalNotificationKind string

const (
	ApprovalRequired ApprovalNotificationKind = "ApprovalRequired"
	ApprovalDecision ApprovalNotificationKind = "ApprovalDecision"
)

type ApprovalNotification struct {
	Kind            ApprovalNotificationKind
	ApprovalID      uint
	Title           string
	Description     string
	ApprovalType    models.ApprovalType
	Priority        models.ApprovalPriority
	Status          models.ApprovalStatus
	RequestedByName string
	ApproverName    string
	DecisionByName  string
	Comments        string
	DueDate         *time.Time
	Link            string
}

type ProcessNotificationKind string

const (
	ProcessStarted   ProcessNotificationKind = "ProcessStarted"
	ProcessCompleted ProcessNotificationKind = "ProcessCompleted"
)

type ProcessNotification struct {
	Kind             ProcessNotificationKind
	ProcessType      models.ProcessType
	ProcessID        uint
	EmployeeName     string
	JobTitle         string
	Department       string
	TargetDepartment string
	ManagerName      string
	EffectiveDate    *time.Time
	TaskCount        int
	Link             string
}

type EmailImportance string

const (
	ImportanceLow    EmailImportance = "low"
	ImportanceNormal EmailImportance = "normal"
	ImportanceHigh   EmailImportance = "high"
)

// EmailMessage письмо в нейтральном виде, транспорт сам собирает свой формат
type EmailMessage struct {
	To         []Recipient
	Cc         []Recipient
	Subject    string
	HtmlBody   string
	TextBody   string
	Importance EmailImportance
	Category   string
	// EntityID задача, запрос или процесс, к которому относится письмо
	EntityID uint
}

// GeneralNotification произвольное сообщение в канал Teams
type GeneralNotification struct {
	Title    string
	Message  string
	Priority models.ApprovalPriority
	Facts    map[string]string
	Link     string
}
