// internal/mailer/mailer.go
//
// Administrator invitation email.
//
// Context
// -------
// Board creation may invite an administrator by email.  Delivery is
// best-effort by contract — the board is already committed to disk when
// the invitation goes out — so implementations report failure and the
// caller downgrades it to a warning.  Production uses Postmark's
// transactional API; dev and tests use Noop.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.

package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrz1836/postmark"
	"go.uber.org/zap"
)

// ErrSendFailed wraps any transport or API-level delivery failure.
var ErrSendFailed = errors.New("invitation send failed")

//
// Postmark-backed sender
//

// Postmark sends invitations through the Postmark transactional API.
type Postmark struct {
	client *postmark.Client
	from   string
}

// NewPostmark constructs a Postmark sender.  Both tokens must be set;
// callers that have no mail configuration should use Noop instead.
func NewPostmark(serverToken, accountToken, from string) (*Postmark, error) {
	if serverToken == "" || accountToken == "" || from == "" {
		return nil, errors.New("mailer: postmark tokens and sender address are required")
	}
	return &Postmark{
		client: postmark.NewClient(serverToken, accountToken),
		from:   from,
	}, nil
}

// Invite mails an administrator invitation for boardUID to email.
func (p *Postmark) Invite(ctx context.Context, boardUID, email string) error {
	resp, err := p.client.SendEmail(ctx, postmark.Email{
		From:    p.from,
		To:      email,
		Subject: fmt.Sprintf("You now administer the %q board", boardUID),
		TextBody: fmt.Sprintf(
			"An account has been created for you as administrator of the %q board.\n"+
				"Sign in with this address to get started.\n", boardUID),
		Tag: "board-invite",
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	if resp.ErrorCode > 0 {
		return fmt.Errorf("%w: postmark error %d: %s", ErrSendFailed, resp.ErrorCode, resp.Message)
	}
	return nil
}

//
// Dev fallback
//

// Noop logs the invitation instead of sending it.  Used when no Postmark
// credentials are configured.
type Noop struct {
	Log *zap.SugaredLogger
}

// Invite records the would-be invitation and succeeds.
func (n Noop) Invite(_ context.Context, boardUID, email string) error {
	if n.Log != nil {
		n.Log.Infow("invitation suppressed (no mailer configured)",
			"board", boardUID, "email", email)
	}
	return nil
}
