package models

// TypedValue is one command argument or result.
type TypedValue struct {
	Type  string `json:"type" enum:"uint8,int8,uint16,int16,uint32,int32" example:"uint8" doc:"Value type"`
	Value int64  `json:"value" example:"1" doc:"Value, range-checked against the type"`
}

// CommandRequest invokes a named device command.
type CommandRequest struct {
	Name string `path:"name" minLength:"1" maxLength:"255" example:"cam_getAWB" doc:"Command name"`
	Body struct {
		Args    []TypedValue `json:"args,omitempty" doc:"Input arguments in order"`
		Returns []string     `json:"returns,omitempty" example:"[\"int32\"]" doc:"Result slot types in order"`
	}
}

// CommandData is the outcome of a successful command.
type CommandData struct {
	Command string       `json:"command" example:"cam_getAWB" doc:"Command name"`
	Status  int32        `json:"status" example:"0" doc:"Device status code"`
	Values  []TypedValue `json:"values" doc:"Decoded result slots"`
}

type CommandResponse struct {
	Body CommandData
}
