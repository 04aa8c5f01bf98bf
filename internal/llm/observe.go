package llm

import "context"

// Observer is called after every model call with the provider name and the
// call's error, if any.
type Observer func(provider string, err error)

type observedClient struct {
	Client
	obs Observer
}

// WithObserver wraps c so that obs sees each Chat outcome.
func WithObserver(c Client, obs Observer) Client {
	if obs == nil {
		return c
	}
	return &observedClient{Client: c, obs: obs}
}

func (o *observedClient) Chat(ctx context.Context, req ChatRequest) (string, error) {
	out, err := o.Client.Chat(ctx, req)
	o.obs(o.Client.Provider(), err)
	return out, err
}
