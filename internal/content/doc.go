// Package content fetches a live page and scores it for phishing indicators.
//
// The analyzer performs one GET (redirects followed up to the client's cap),
// reads a bounded prefix of the body and walks the HTML tree counting:
//   - password inputs
//   - hidden inputs
//   - forms that submit to a different host
//   - iframes
//   - scripts loaded from a different host
//   - urgency phrases present in the page text
//
// The counts are folded into a model.ContentRiskProfile whose risk score
// drives the stage decision. Only a page fetched with status 200 can produce
// a verdict; any fetch problem makes the stage abstain.
package content
