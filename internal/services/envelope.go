package services

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/desertthunder/xes/internal/models"
)

// envelope is the status wrapper around every platform response.
//
// Two shapes exist: the passport hosts answer {errcode, errmsg, data}, the code site
// answers {stat, status, msg, message, data}. Both resolve once, in [resolve], into
// either a payload or an *APIError.
type envelope interface {
	ok() bool
	message() string
	payload() json.RawMessage
}

type passportEnvelope struct {
	ErrCode models.FlexInt  `json:"errcode"`
	ErrMsg  string          `json:"errmsg"`
	Data    json.RawMessage `json:"data"`
}

func (e *passportEnvelope) ok() bool                 { return e.ErrCode == 0 }
func (e *passportEnvelope) message() string          { return e.ErrMsg }
func (e *passportEnvelope) payload() json.RawMessage { return e.Data }

type codeEnvelope struct {
	Stat    models.FlexInt  `json:"stat"`
	Status  models.FlexInt  `json:"status"`
	Msg     string          `json:"msg"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *codeEnvelope) ok() bool { return e.Stat == 1 }

func (e *codeEnvelope) message() string {
	if e.Msg != "" {
		return e.Msg
	}
	return e.Message
}

func (e *codeEnvelope) payload() json.RawMessage { return e.Data }

// resolve decodes resp into env and then the payload into a T.
//
// When requireData is set a success envelope with a null/absent data field is an error.
func resolve[T any](resp *APIResponse, env envelope, requireData bool) (*T, error) {
	if err := json.Unmarshal(resp.Body, env); err != nil {
		return nil, newAPIError(fmt.Sprintf("unexpected response (status %d)", resp.StatusCode))
	}

	if !env.ok() {
		msg := env.message()
		if msg == "" {
			msg = fmt.Sprintf("request rejected (status %d)", resp.StatusCode)
		}
		return nil, newAPIError(msg)
	}

	var out T
	raw := bytes.TrimSpace(env.payload())
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		if requireData {
			msg := env.message()
			if msg == "" {
				msg = "response contained no data"
			}
			return nil, newAPIError(msg)
		}
		return &out, nil
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, wrapAPIError("malformed response data", err)
	}
	return &out, nil
}
