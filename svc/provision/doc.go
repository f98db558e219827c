// Package provision runs the post-signup profile setup flow: referral
// rewards, default profile fields, the auth plan claim and the welcome email.
//
// Provisioning is best effort. A half-provisioned profile is better than a
// failed signup, so every failure is logged and swallowed; the flow never
// returns an error to the caller.
package provision
