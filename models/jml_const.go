package models

import (
	"fmt"
	"strings"
)

type ProcessType string

const (
	ProcessOnboarding  ProcessType = "Onboarding"
	ProcessMover       ProcessType = "Mover"
	ProcessOffboarding ProcessType = "Offboarding"
)

var ProcessTypes = []ProcessType{ProcessOnboarding, ProcessMover, ProcessOffboarding}

// ParseProcessType принимает как "Onboarding", так и "onboarding"
func ParseProcessType(value string) (ProcessType, bool) {
	for _, kind := range ProcessTypes {
		if strings.EqualFold(string(kind), value) {
			return kind, true
		}
	}
	return "", false
}

// Title название процесса для писем и карточек
func (p ProcessType) Title() string {
	switch p {
	case ProcessMover:
		return "Перевод"
	case ProcessOffboarding:
		return "Увольнение"
	}
	return "Онбординг"
}

// Link адрес карточки процесса в интерфейсе
func (p ProcessType) Link(baseURL string, processID uint) string {
	return fmt.Sprintf("%s/%s/%d", strings.TrimRight(baseURL, "/"), strings.ToLower(string(p)), processID)
}

func (p ProcessType) RelatedItemType() RelatedItemType {
	return RelatedItemType(p)
}

type ProcessStatus string

const (
	ProcessNotStarted ProcessStatus = "Not Started"
	ProcessInProgress ProcessStatus = "In Progress"
	ProcessCompleted  ProcessStatus = "Completed"
	ProcessCancelled  ProcessStatus = "Cancelled"
)

var ProcessTerminalStatuses = []ProcessStatus{ProcessCompleted, ProcessCancelled}

type TaskStatus string

const (
	TaskPending       TaskStatus = "Pending"
	TaskInProgress    TaskStatus = "In Progress"
	TaskCompleted     TaskStatus = "Completed"
	TaskNotApplicable TaskStatus = "Not Applicable"
)

var TaskOpenStatuses = []TaskStatus{TaskPending, TaskInProgress}

func (s TaskStatus) IsOpen() bool {
	return s == TaskPending || s == TaskInProgress
}

func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted, TaskNotApplicable:
		return true
	}
	return false
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "Low"
	TaskPriorityMedium TaskPriority = "Medium"
	TaskPriorityHigh   TaskPriority = "High"
	// TaskPriorityCritical есть только в мастере, в задачи и уведомления не попадает
	TaskPriorityCritical TaskPriority = "Critical"
)

// NormalizeTaskPriority приводит приоритет к набору, который хранится в задачах
func NormalizeTaskPriority(p TaskPriority) TaskPriority {
	switch p {
	case TaskPriorityCritical:
		return TaskPriorityHigh
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return p
	}
	return TaskPriorityMedium
}
