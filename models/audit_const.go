package models

type AuditAction string

const (
	AuditWorkflowStarted      AuditAction = "WorkflowStarted"
	AuditWorkflowCompleted    AuditAction = "WorkflowCompleted"
	AuditProcessCreated       AuditAction = "ProcessCreated"
	AuditTaskAssigned         AuditAction = "TaskAssigned"
	AuditTaskStatusChanged    AuditAction = "TaskStatusChanged"
	AuditTaskCompleted        AuditAction = "TaskCompleted"
	AuditReminderSent         AuditAction = "ReminderSent"
	AuditApprovalRequested    AuditAction = "ApprovalRequested"
	AuditApprovalDecided      AuditAction = "ApprovalDecided"
	AuditApprovalExpired      AuditAction = "ApprovalExpired"
	AuditNotificationSent     AuditAction = "NotificationSent"
	AuditNotificationQueued   AuditAction = "NotificationQueued"
	AuditTeamsSent            AuditAction = "TeamsNotificationSent"
	AuditTeamsFailed          AuditAction = "TeamsNotificationFailed"
	AuditConfigurationChanged AuditAction = "ConfigurationChanged"
)

type AuditEntityType string

const (
	EntityOnboarding    AuditEntityType = "Onboarding"
	EntityMover         AuditEntityType = "Mover"
	EntityOffboarding   AuditEntityType = "Offboarding"
	EntityTask          AuditEntityType = "Task"
	EntityApproval      AuditEntityType = "Approval"
	EntityNotification  AuditEntityType = "Notification"
	EntityConfiguration AuditEntityType = "Configuration"
)

func ProcessEntity(kind ProcessType) AuditEntityType {
	return AuditEntityType(kind)
}
