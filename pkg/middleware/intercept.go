package middleware

import (
	"context"

	"github.com/vango-dev/uniroute/pkg/host"
)

func (n navFunc) NavigateTo(ctx context.Context, url string) error {
	return n.intercept(ctx, Call{Method: "navigateTo", URL: url}, func(ctx context.Context) error {
		return n.next.NavigateTo(ctx, url)
	})
}

func (n navFunc) RedirectTo(ctx context.Context, url string) error {
	return n.intercept(ctx, Call{Method: "redirectTo", URL: url}, func(ctx context.Context) error {
		return n.next.RedirectTo(ctx, url)
	})
}

func (n navFunc) ReLaunch(ctx context.Context, url string) error {
	return n.intercept(ctx, Call{Method: "reLaunch", URL: url}, func(ctx context.Context) error {
		return n.next.ReLaunch(ctx, url)
	})
}

func (n navFunc) SwitchTab(ctx context.Context, url string) error {
	return n.intercept(ctx, Call{Method: "switchTab", URL: url}, func(ctx context.Context) error {
		return n.next.SwitchTab(ctx, url)
	})
}

func (n navFunc) NavigateBack(ctx context.Context, opts host.BackOptions) error {
	return n.intercept(ctx, Call{Method: "navigateBack", Back: opts}, func(ctx context.Context) error {
		return n.next.NavigateBack(ctx, opts)
	})
}
