package reader

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
)

// ErrSignupNotSupported indicates that signup is not supported.
var ErrSignupNotSupported = errors.New("signup not supported")

func (r *Reader) authFlow() auth.Flow {
	return auth.NewFlow(r, auth.SendCodeOptions{})
}

func (r *Reader) Code(_ context.Context, _ *tg.AuthSentCode) (string, error) {
	fmt.Print("Enter code: ")

	code, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read code: %w", err)
	}

	return strings.TrimSpace(code), nil
}

func (r *Reader) Phone(_ context.Context) (string, error) {
	if r.cfg.TGPhone != "" {
		return sanitizePhone(r.cfg.TGPhone), nil
	}

	fmt.Print("Enter phone: ")

	phone, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read phone: %w", err)
	}

	return sanitizePhone(phone), nil
}

func (r *Reader) Password(_ context.Context) (string, error) {
	if r.cfg.TG2FAPassword != "" {
		return r.cfg.TG2FAPassword, nil
	}

	fmt.Print("Enter 2FA password: ")

	password, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	return strings.TrimSpace(password), nil
}

func (r *Reader) AcceptTermsOfService(_ context.Context, _ tg.HelpTermsOfService) error {
	return nil
}

func (r *Reader) SignUp(_ context.Context) (auth.UserInfo, error) {
	return auth.UserInfo{}, ErrSignupNotSupported
}

func sanitizePhone(phone string) string {
	phone = strings.TrimSpace(phone)

	var sb strings.Builder

	for i, r := range phone {
		if r >= '0' && r <= '9' || (i == 0 && r == '+') {
			sb.WriteRune(r)
		}
	}

	return sb.String()
}
