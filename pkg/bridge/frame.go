package bridge

import (
	"encoding/json"
	"time"

	"github.com/vango-dev/uniroute/internal/errors"
	"github.com/vango-dev/uniroute/pkg/host"
)

// FrameType identifies a bridge frame.
type FrameType string

const (
	// FrameNavigate is sent to the runtime to run one navigation primitive.
	FrameNavigate FrameType = "navigate"
	// FrameResult answers a navigate frame with the same ID.
	FrameResult FrameType = "result"
	// FrameLoad reports that a page loaded, with its query and the stack.
	FrameLoad FrameType = "load"
	// FrameError is sent to the runtime when the server rejects something.
	FrameError FrameType = "error"
)

// Frame is the JSON message exchanged with the runtime.
type Frame struct {
	ID   uint64    `json:"id,omitempty"`
	Type FrameType `json:"type"`

	// navigate
	Method            string `json:"method,omitempty"`
	URL               string `json:"url,omitempty"`
	Delta             int    `json:"delta,omitempty"`
	AnimationType     string `json:"animationType,omitempty"`
	AnimationDuration int64  `json:"animationDuration,omitempty"` // milliseconds

	// result, error
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`

	// load
	Query map[string]string `json:"query,omitempty"`
	Pages []host.StaticPage `json:"pages,omitempty"`
}

// navigateFrame builds the command for one primitive.
func navigateFrame(method, url string, back host.BackOptions) Frame {
	return Frame{
		Type:              FrameNavigate,
		Method:            method,
		URL:               url,
		Delta:             back.Delta,
		AnimationType:     back.AnimationType,
		AnimationDuration: back.AnimationDuration.Milliseconds(),
	}
}

// BackOptions returns the navigateBack options carried by f.
func (f Frame) BackOptions() host.BackOptions {
	return host.BackOptions{
		Delta:             f.Delta,
		AnimationType:     f.AnimationType,
		AnimationDuration: time.Duration(f.AnimationDuration) * time.Millisecond,
	}
}

// DecodeFrame parses one text message.
func DecodeFrame(data []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, errors.New("E162").Wrap(err)
	}
	switch f.Type {
	case FrameResult:
		if f.ID == 0 {
			return Frame{}, errors.New("E162").WithDetail("result frame without id")
		}
	case FrameLoad, FrameNavigate, FrameError:
	default:
		return Frame{}, errors.New("E162").WithDetailf("unknown frame type %q", f.Type)
	}
	return f, nil
}
