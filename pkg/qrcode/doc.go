// Package qrcode generates PNG QR codes, used for shareable referral links.
package qrcode
