package chesspresenter

import (
	"strings"

	"github.com/park285/Cheese-chess-engine/pkg/chessdto"
)

// Presenter delivers formatted text and board images without coupling to
// the client that displays them.
type Presenter struct {
	formatter   *Formatter
	sendMessage func(message string) error
	sendImage   func(png []byte) error
}

func NewPresenter(f *Formatter, sendMessage func(message string) error, sendImage func(png []byte) error) *Presenter {
	return &Presenter{formatter: f, sendMessage: sendMessage, sendImage: sendImage}
}

// Board sends the status block for v, preceded by message if set, and then
// the board image if one was rendered.
func (p *Presenter) Board(message string, v *chessdto.GameView, png []byte) error {
	if p == nil {
		return nil
	}
	var parts []string
	if text := strings.TrimSpace(message); text != "" {
		parts = append(parts, text)
	}
	if v != nil && p.formatter != nil {
		parts = append(parts, p.formatter.Status(v))
	}
	if len(parts) > 0 && p.sendMessage != nil {
		if err := p.sendMessage(strings.Join(parts, "\n\n")); err != nil {
			return err
		}
	}
	if len(png) > 0 && p.sendImage != nil {
		if err := p.sendImage(png); err != nil {
			return err
		}
	}
	return nil
}

// Text sends a single message.
func (p *Presenter) Text(message string) error {
	if p == nil || p.sendMessage == nil || strings.TrimSpace(message) == "" {
		return nil
	}
	return p.sendMessage(message)
}
