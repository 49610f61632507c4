package models

type InAppCode string

type InAppTpl struct {
	Title string
	Msg   string
}

const (
	InAppTaskAssigned     InAppCode = "TaskAssigned"
	InAppTaskCompleted    InAppCode = "TaskCompleted"
	InAppApprovalRequired InAppCode = "ApprovalRequired"
	InAppApprovalDecided  InAppCode = "ApprovalDecided"
)

var InAppCodeMap = map[InAppCode]InAppTpl{
	InAppTaskAssigned:     {Title: "Новая задача", Msg: "Вам назначена задача «%v» (%v)."},
	InAppTaskCompleted:    {Title: "Задача выполнена", Msg: "Задача «%v» выполнена пользователем %v."},
	InAppApprovalRequired: {Title: "Требуется согласование", Msg: "Запрос «%v» ожидает вашего решения до %v."},
	InAppApprovalDecided:  {Title: "Решение по запросу", Msg: "Запрос «%v»: %v (%v)."},
}
