package dto

type CreateTodoRequest struct {
	Text       string `json:"text"`
	AssignedTo string `json:"assigned_to,omitempty"`
}

type UpdateTodoRequest struct {
	Completed bool `json:"completed"`
}

type ReassignTodoRequest struct {
	AssignedTo string `json:"assigned_to"`
}
