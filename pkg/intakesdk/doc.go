/*
Package intakesdk is the Go client for the leadflow intake service.

The anonymous intake form and the claim page talk to the service without a
token:

	client := intakesdk.NewClient("https://intake.example.com")

	res, err := client.Submit(ctx, intakesdk.SubmitRequest{
		Name:    "Jane Doe",
		Email:   "jane@example.com",
		Answers: map[string]string{"loanAmount": "450000"},
		File:    &intakesdk.File{Name: "payslip.pdf", Data: data},
	})

	claimed, err := client.Claim(ctx, res.ChallengeID, "s3cret-Passw0rd")

Back-office tools attach a bearer token issued by the auth service:

	admin := client.WithToken(accessToken)
	page, err := admin.ListChallenges(ctx, intakesdk.ChallengeFilter{Status: "verified"})

# Retries

Requests that fail with 502, 503, 504 or a network error are retried at most
MaxRetries times with an exponential backoff starting at Backoff. Submit
always carries an Idempotency-Key header so a retried submission is replayed
by the service rather than recorded twice.

# Errors

Non-2xx responses are returned as *APIError carrying the status, the error
code and any per-field validation messages.
*/
package intakesdk
