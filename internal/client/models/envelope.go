package models

// StatusOK is the envelope code for a successful response.
const StatusOK = 200

type Status struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Envelope is the wrapper every response body uses.
type Envelope[T any] struct {
	Status Status `json:"status"`
	Data   T      `json:"data"`
}

func (e Envelope[T]) OK() bool {
	return e.Status.Code == StatusOK
}
