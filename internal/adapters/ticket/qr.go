package ticket

import (
	"encoding/base64"
	"fmt"

	"github.com/skip2/go-qrcode"

	"campusticketing/internal/domain"
)

// DefaultSize is the rendered QR edge length in pixels.
const DefaultSize = 256

type qrIssuer struct {
	size  int
	level qrcode.RecoveryLevel
}

// NewQRIssuer returns a TicketIssuer that renders the ticket token as a PNG QR code.
// size <= 0 uses DefaultSize.
func NewQRIssuer(size int) domain.TicketIssuer {
	if size <= 0 {
		size = DefaultSize
	}
	return &qrIssuer{size: size, level: qrcode.Medium}
}

// Issue encodes claims into the ticket token and renders it. Any failure wraps
// domain.ErrTicketRender so callers can abort before persisting anything.
func (q *qrIssuer) Issue(claims domain.TicketClaims) (*domain.Ticket, error) {
	token, err := claims.Encode()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTicketRender, err)
	}
	png, err := qrcode.Encode(token, q.level, q.size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTicketRender, err)
	}
	return &domain.Ticket{
		Token:   token,
		Image:   png,
		DataURL: DataURL(png),
	}, nil
}

// DataURL embeds a PNG as a data URL.
func DataURL(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
