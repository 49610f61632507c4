package apimodels

type Response struct {
	Status  string      `json:"status"`            //результат обработки fail/success
	Message string      `json:"message,omitempty"` //сообщение ошибки
	Data    interface{} `json:"data,omitempty"`    //данные ответа
}

func NewError(message string) Response {
	return Response{
		Status:  "fail",
		Message: message,
	}
}

func NewResponse(data interface{}) Response {
	return Response{
		Status: "success",
		Data:   data,
	}
}

// ListResponse ответ со списком, Total равен числу записей в Data
type ListResponse struct {
	Response
	Total int `json:"total"`
}

func NewListResponse[T any](list []T) ListResponse {
	if list == nil {
		list = []T{}
	}
	return ListResponse{
		Response: Response{
			Status: "success",
			Data:   list,
		},
		Total: len(list),
	}
}
