// Package protocol defines the messages sent to editors watching exports.
package protocol

import (
	"encoding/json"
	"time"
)

const Version = "1.0"

// Message types.
const (
	TypeNotice = "NOTICE"
	TypeError  = "ERROR"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}

// NoticeMsg (exporter -> editor) is a quick message after an export or an
// error dialog when one fails.
type NoticeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code,omitempty"`
	Title           string `json:"title,omitempty"`
	Body            string `json:"body"`
	Project         string `json:"project,omitempty"`
	ExportID        string `json:"export_id,omitempty"`
	TimeUnixMS      int64  `json:"time_unix_ms"`
}

// Notice builds a NOTICE message.
func Notice(project, exportID, body string, now time.Time) NoticeMsg {
	return NoticeMsg{
		Type:            TypeNotice,
		ProtocolVersion: Version,
		Body:            body,
		Project:         project,
		ExportID:        exportID,
		TimeUnixMS:      now.UnixMilli(),
	}
}

// Error builds an ERROR message. Unknown codes are reported as ErrInternal.
func Error(project, code, title, body string, now time.Time) NoticeMsg {
	if code == "" || !IsKnownCode(code) {
		code = ErrInternal
	}
	return NoticeMsg{
		Type:            TypeError,
		ProtocolVersion: Version,
		Code:            code,
		Title:           title,
		Body:            body,
		Project:         project,
		TimeUnixMS:      now.UnixMilli(),
	}
}

const TypeSubscribe = "SUBSCRIBE"

// SubscribeMsg (editor -> exporter) starts a notice stream. An empty Project
// receives notices of every project.
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Project         string `json:"project,omitempty"`
}
