package domain

import "net/url"

// ActivationLink builds the confirmation URL mailed to a new subscriber.
// The subscription ID doubles as the one-time activation token.
func ActivationLink(baseURL, id string) (string, error) {
	return link(baseURL, id, "activate")
}

// UnsubscribeLink builds the opt-out URL embedded in digest emails.
func UnsubscribeLink(baseURL, id string) (string, error) {
	return link(baseURL, id, "unsubscribe")
}

func link(baseURL, id, action string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	u.Path = "/v1/subscriptions/" + id + "/" + action
	return u.String(), nil
}
