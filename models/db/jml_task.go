package dbmodels

import (
	"jml-lite/models"
	taskapimodels "jml-lite/models/api/task"
	"time"
)

// JmlTask задача процесса; таблица выбирается по типу процесса
type JmlTask struct {
	BaseModel
	ParentID        uint                `gorm:"index"`
	Title           string              `gorm:"type:varchar(255)"`
	Category        string              `gorm:"type:varchar(100)"`
	Status          models.TaskStatus   `gorm:"type:varchar(50);index"`
	Priority        models.TaskPriority `gorm:"type:varchar(50)"`
	DueDate         *time.Time          `gorm:"index"`
	AssigneeID      *uint
	AssigneeName    string `gorm:"type:varchar(255)"`
	AssigneeEmail   string `gorm:"type:varchar(255)"`
	CompletedDate   *time.Time
	CompletedByName string `gorm:"type:varchar(255)"`
	Notes           string `gorm:"type:text"`
	SortOrder       int
}

func (r JmlTask) ToModelView(kind models.ProcessType) taskapimodels.TaskView {
	return taskapimodels.TaskView{
		ID:              r.ID,
		ProcessType:     kind,
		ParentID:        r.ParentID,
		Title:           r.Title,
		Category:        r.Category,
		Status:          r.Status,
		Priority:        r.Priority,
		DueDate:         r.DueDate,
		AssigneeID:      r.AssigneeID,
		AssigneeName:    r.AssigneeName,
		AssigneeEmail:   r.AssigneeEmail,
		CompletedDate:   r.CompletedDate,
		CompletedByName: r.CompletedByName,
		Notes:           r.Notes,
	}
}

func TaskTableName(kind models.ProcessType) string {
	switch kind {
	case models.ProcessMover:
		return "mover_tasks"
	case models.ProcessOffboarding:
		return "offboarding_tasks"
	}
	return "onboarding_tasks"
}
