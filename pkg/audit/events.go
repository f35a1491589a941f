package audit

import "fmt"

// ModelEvent represents a model definition lifecycle audit event
type ModelEvent struct {
	UserID       string
	ClientIP     string
	ModelName    string
	TableName    string
	Operation    string // "create", "deactivate"
	Success      bool
	ErrorMessage string
}

func (e ModelEvent) MessageID() string {
	return "model"
}

func (e ModelEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s %sd model %s (table %s)", e.UserID, e.Operation, e.ModelName, e.TableName)
	}
	msg := fmt.Sprintf("%s tried to %s model %s", e.UserID, e.Operation, e.ModelName)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e ModelEvent) Severity() Severity {
	if e.Success {
		return SeverityInfo
	}
	return SeverityWarning
}

func (e ModelEvent) Facility() int {
	return FacilityAuthPriv
}

func (e ModelEvent) StructuredData() map[string]map[string]string {
	result := "success"
	if !e.Success {
		result = "failure"
	}
	sd := map[string]map[string]string{
		SDIDAuth: {
			"user": e.UserID,
		},
		SDIDModel: {
			"name": e.ModelName,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": e.Operation,
			"result":    result,
		},
	}
	if e.TableName != "" {
		sd[SDIDModel]["table"] = e.TableName
	}
	return sd
}

// RecordEvent represents a record mutation audit event
type RecordEvent struct {
	UserID       string
	ClientIP     string
	ModelName    string
	RecordID     string
	Operation    string // "create", "update", "delete"
	Success      bool
	ErrorMessage string
}

func (e RecordEvent) MessageID() string {
	return "record"
}

func (e RecordEvent) Message() string {
	subject := fmt.Sprintf("record in %s", e.ModelName)
	if e.RecordID != "" {
		subject = fmt.Sprintf("record %s in %s", e.RecordID, e.ModelName)
	}
	if e.Success {
		return fmt.Sprintf("%s %sd %s", e.UserID, e.Operation, subject)
	}
	msg := fmt.Sprintf("%s tried to %s %s", e.UserID, e.Operation, subject)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e RecordEvent) Severity() Severity {
	if e.Success {
		return SeverityInfo
	}
	return SeverityWarning
}

func (e RecordEvent) Facility() int {
	return FacilityAuthPriv
}

func (e RecordEvent) StructuredData() map[string]map[string]string {
	result := "success"
	if !e.Success {
		result = "failure"
	}
	sd := map[string]map[string]string{
		SDIDAuth: {
			"user": e.UserID,
		},
		SDIDModel: {
			"name": e.ModelName,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": e.Operation,
			"result":    result,
		},
	}
	if e.RecordID != "" {
		sd[SDIDSubject] = map[string]string{"record": e.RecordID}
	}
	return sd
}

// CheckEvent represents a permission check audit event
type CheckEvent struct {
	UserID       string
	ClientIP     string
	ModelName    string
	Permission   string
	Allowed      bool
	ErrorMessage string
}

func (e CheckEvent) MessageID() string {
	return "check"
}

func (e CheckEvent) Message() string {
	if e.Allowed {
		return fmt.Sprintf("%s checked permission %s on %s: allowed", e.UserID, e.Permission, e.ModelName)
	}
	msg := fmt.Sprintf("%s checked permission %s on %s: denied", e.UserID, e.Permission, e.ModelName)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e CheckEvent) Severity() Severity {
	if e.Allowed {
		return SeverityInfo
	}
	return SeverityWarning
}

func (e CheckEvent) Facility() int {
	return FacilityAuthPriv
}

func (e CheckEvent) StructuredData() map[string]map[string]string {
	result := "success"
	if !e.Allowed {
		result = "failure"
	}
	return map[string]map[string]string{
		SDIDAuth: {
			"user": e.UserID,
		},
		SDIDModel: {
			"name":       e.ModelName,
			"permission": e.Permission,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": "check",
			"result":    result,
		},
	}
}
