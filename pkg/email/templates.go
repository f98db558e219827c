package email

import (
	"fmt"
	"strings"
)

// Branding constants shared by all transactional emails.
const (
	appLogoURL = "https://cdn.fidusai.tech/brand/fyllo-logo.png"
	devLogoURL = "https://cdn.fidusai.tech/brand/fidus-tech.png"
)

var (
	logoHTML = fmt.Sprintf(
		`<img src="%s" width="80" height="80" style="border-radius: 16px; display: block; margin: 0 auto 20px auto;" alt="Fyllo AI Logo">`,
		appLogoURL,
	)
	footerHTML = fmt.Sprintf(`
<hr>
<div style="text-align: center;">
    <img src="%s" width="40" height="40" style="border-radius: 50%%; display: block; margin: 10px auto 5px auto;" alt="Fidus Tech Logo">
    <p style="font-size: 12px; color: #666; margin: 0;">from Fidus Tech</p>
</div>`, devLogoURL)
)

// WelcomeEmail is sent once after a new profile is provisioned.
func WelcomeEmail(to, name string) SendEmailParams {
	return SendEmailParams{
		SendTo:  to,
		Subject: "Welcome to Fyllo AI!",
		Tag:     "welcome",
		BodyHTML: fmt.Sprintf(`%s
<h1>Welcome, %s!</h1>
<p>Thank you for joining Fyllo AI, your intelligent expense planning companion.</p>
<p>We've started you off with your initial credits. You can start scanning receipts and get insights over your expenses.</p>
<p>If you have any questions, just reply to this email!</p>
%s`, logoHTML, name, footerHTML),
	}
}

// ReferralSuccessEmail notifies an inviter that their referral code was used.
func ReferralSuccessEmail(to string, rewardAmount, totalReferrals int) SendEmailParams {
	return SendEmailParams{
		SendTo:  to,
		Subject: "You earned Referral Credits!",
		Tag:     "referral-success",
		BodyHTML: fmt.Sprintf(`%s
<h1>Great News!</h1>
<p>Someone just signed up using your referral code.</p>
<p>We've added <strong>%d AI Credits</strong> to your account as a thank you.</p>
<p>You have now referred <strong>%d</strong> friends to Fyllo AI!</p>
<p>Keep sharing and keep earning. Happy Expense planning!</p>
%s`, logoHTML, rewardAmount, totalReferrals, footerHTML),
	}
}

// SubscriptionSuccessEmail confirms a new subscription or upgrade.
func SubscriptionSuccessEmail(to, plan string, credits int) SendEmailParams {
	return SendEmailParams{
		SendTo:  to,
		Subject: fmt.Sprintf("Welcome to Fyllo AI %s!", strings.ToUpper(plan)),
		Tag:     "subscription-success",
		BodyHTML: fmt.Sprintf(`%s
<h1>Subscription Confirmed</h1>
<p>Thank you for subscribing to the <strong>%s</strong> plan.</p>
<p>Your account has been credited with <strong>%d</strong> AI credits.</p>
<div style="background-color: #f8f9fa; padding: 15px; border-radius: 12px; margin: 20px 0; border: 1px solid #eee;">
    <p style="font-size: 13px; color: #666; margin: 0;">
        <strong>A Note on Timing:</strong> credits refresh on a global schedule, so depending on your timezone the new credits may arrive a little earlier or later than your local midnight.
    </p>
</div>
<p>Happy Expense planning!</p>
%s`, logoHTML, plan, credits, footerHTML),
	}
}

// CreditResetEmail notifies paying users that monthly credits refreshed.
func CreditResetEmail(to, plan string, credits int) SendEmailParams {
	return SendEmailParams{
		SendTo:  to,
		Subject: fmt.Sprintf("Your Monthly %s Credits are Here!", strings.ToUpper(plan)),
		Tag:     "credit-reset",
		BodyHTML: fmt.Sprintf(`%s
<h1>Credits Reset Successfully</h1>
<p>Your monthly credits for the <strong>%s</strong> plan have been reset.</p>
<p>You now have <strong>%d</strong> credits available for use.</p>
<p>Happy Expense planning!</p>
%s`, logoHTML, plan, credits, footerHTML),
	}
}

// SubscriptionExpiredEmail is sent when an entitlement expires.
func SubscriptionExpiredEmail(to string) SendEmailParams {
	return SendEmailParams{
		SendTo:  to,
		Subject: "Your Fyllo AI Subscription has Expired",
		Tag:     "subscription-expired",
		BodyHTML: fmt.Sprintf(`%s
<h1>Subscription Expired</h1>
<p>Your subscription has expired and your account has been moved to the Free plan.</p>
<p>To continue enjoying premium features, please resubscribe in the app.</p>
<p>Happy Expense planning!</p>
%s`, logoHTML, footerHTML),
	}
}
