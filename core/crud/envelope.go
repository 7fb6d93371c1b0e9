package crud

// Envelope is the uniform response shape of every entity endpoint.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// PageEnvelope is the response of a paged listing (datatable action).
type PageEnvelope struct {
	Success         bool        `json:"success"`
	Message         string      `json:"message,omitempty"`
	Draw            int         `json:"draw"`
	RecordsTotal    int         `json:"recordsTotal"`
	RecordsFiltered int         `json:"recordsFiltered"`
	Data            interface{} `json:"data"`
}

// Option is one entry of a dropdown.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

func OK(msg string, data interface{}) Envelope {
	return Envelope{Success: true, Message: msg, Data: data}
}

func Fail(msg string, data ...interface{}) Envelope {
	env := Envelope{Success: false, Message: msg}
	if len(data) > 0 {
		env.Data = data[0]
	}
	return env
}

func CreatedMsg(label string) string { return label + " created successfully" }
func UpdatedMsg(label string) string { return label + " updated successfully" }
func DeletedMsg(label string) string { return label + " deleted successfully" }
