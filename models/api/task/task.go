package taskapimodels

import (
	"jml-lite/models"
	apimodels "jml-lite/models/api"
	"time"

	"github.com/pkg/errors"
)

type TaskView struct {
	ID              uint                `json:"id"`
	ProcessType     models.ProcessType  `json:"process_type"`
	ParentID        uint                `json:"parent_id"`
	Title           string              `json:"title"`
	Category        string              `json:"category"`
	Status          models.TaskStatus   `json:"status"`
	Priority        models.TaskPriority `json:"priority"`
	DueDate         *time.Time          `json:"due_date,omitempty"`
	AssigneeID      *uint               `json:"assignee_id,omitempty"`
	AssigneeName    string              `json:"assignee_name,omitempty"`
	AssigneeEmail   string              `json:"assignee_email,omitempty"`
	CompletedDate   *time.Time          `json:"completed_date,omitempty"`
	CompletedByName string              `json:"completed_by_name,omitempty"`
	Notes           string              `json:"notes,omitempty"`
}

// TaskWithEmployee задача вместе с сотрудником из родительской карточки
type TaskWithEmployee struct {
	TaskView
	EmployeeName string `json:"employee_name"`
	EmployeeID   string `json:"employee_id"`
}

// TaskConfig задача из мастера создания процесса
type TaskConfig struct {
	Title         string              `json:"title" validate:"required"`
	Category      string              `json:"category"`
	Priority      models.TaskPriority `json:"priority" validate:"omitempty,oneof=Low Medium High Critical"`
	DueDate       *time.Time          `json:"due_date"`
	AssigneeID    *uint               `json:"assignee_id"`
	AssigneeName  string              `json:"assignee_name"`
	AssigneeEmail string              `json:"assignee_email"`
	Notes         string              `json:"notes"`
}

type TaskStats struct {
	Overdue  int `json:"overdue"`
	DueToday int `json:"due_today"`
	DueSoon  int `json:"due_soon"`
	Total    int `json:"total"`
}

type ReminderResult struct {
	Task  TaskWithEmployee `json:"task"`
	Sent  bool             `json:"sent"`
	Error string           `json:"error,omitempty"`
}

// TaskAssignment назначение исполнителя задачи
type TaskAssignment struct {
	ProcessType   models.ProcessType `json:"-"`
	TaskID        uint               `json:"-"`
	AssigneeID    uint               `json:"assignee_id" validate:"required"`
	AssigneeName  string             `json:"assignee_name"`
	AssigneeEmail string             `json:"assignee_email" validate:"omitempty,email"`
	Notes         string             `json:"notes"`
}

func (a TaskAssignment) Validate() error {
	return apimodels.ValidateStruct(a)
}

// TaskCompletion данные для обработки завершения задачи
type TaskCompletion struct {
	ProcessType   models.ProcessType `json:"-"`
	TaskID        uint               `json:"-"`
	NotifyUserIDs []uint             `json:"notify_user_ids"`
}

type StatusUpdate struct {
	Status        models.TaskStatus `json:"status"`
	NotifyUserIDs []uint            `json:"notify_user_ids"`
}

func (s StatusUpdate) Validate() error {
	if !s.Status.IsValid() {
		return errors.Errorf("недопустимый статус задачи: %v", s.Status)
	}
	return nil
}

type DateRange struct {
	Start time.Time `query:"start"`
	End   time.Time `query:"end"`
}

func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return errors.New("не указаны границы периода")
	}
	if !r.End.After(r.Start) {
		return errors.New("конец периода должен быть позже начала")
	}
	return nil
}
