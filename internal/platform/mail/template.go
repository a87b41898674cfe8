package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"math"
	"time"
)

var verificationTmpl = template.Must(template.New("verification").Parse(`<div style="font-family: Arial, sans-serif; color: #333; line-height: 1.6;">
  <div style="max-width: 600px; margin: 20px auto; padding: 20px; border: 1px solid #ddd; border-radius: 10px;">
    <div style="text-align: center; margin-bottom: 20px; border-bottom: 1px solid #ddd; padding-bottom: 15px;">
      <h1 style="color: #10B981; margin: 0; font-size: 28px;">Vivimap</h1>
    </div>
    <h2 style="font-size: 24px; color: #333;">Confirm Your Email Address</h2>
    <p>Welcome to Vivimap! Use the verification code below to finish creating your account.</p>
    <div style="text-align: center; margin: 30px 0;">
      <p style="font-size: 36px; font-weight: bold; letter-spacing: 8px; color: #10B981; background-color: #f0fdf4; padding: 15px 20px; border-radius: 8px; display: inline-block;">{{.Code}}</p>
    </div>
    <p>This code will expire in <strong>{{.Minutes}} minutes</strong>. If you did not request this code, you can safely ignore this email.</p>
    <hr style="border: none; border-top: 1px solid #ddd; margin: 20px 0;">
    <p style="font-size: 12px; color: #888; text-align: center;">&copy; {{.Year}} Vivimap. All rights reserved.</p>
  </div>
</div>
`))

type verificationView struct {
	Code    string
	Minutes int
	Year    int
}

// RenderVerification renders the HTML body of a verification email.
// The expiry is expressed in whole minutes relative to now, never below one.
func RenderVerification(msg VerificationEmail, now time.Time) (string, error) {
	minutes := int(math.Ceil(msg.ExpiresAt.Sub(now).Minutes()))
	if minutes < 1 {
		minutes = 1
	}

	var buf bytes.Buffer
	if err := verificationTmpl.Execute(&buf, verificationView{
		Code:    msg.Code,
		Minutes: minutes,
		Year:    now.Year(),
	}); err != nil {
		return "", fmt.Errorf("render verification email: %w", err)
	}
	return buf.String(), nil
}
