package jmltask

import (
	"jml-lite/models"
	dbmodels "jml-lite/models/db"
)

// Progress задачи со статусом Completed и Not Applicable считаются закрытыми
func Progress(tasks []dbmodels.JmlTask) int {
	if len(tasks) == 0 {
		return 0
	}
	done := 0
	for _, task := range tasks {
		if task.Status == models.TaskCompleted || task.Status == models.TaskNotApplicable {
			done++
		}
	}
	return done * 100 / len(tasks)
}
