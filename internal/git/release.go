package git

import (
	"context"
	"fmt"
)

// Add stages files.
func (c *Client) Add(ctx context.Context, files ...string) error {
	if len(files) == 0 {
		return nil
	}
	args := append([]string{"add", "--"}, files...)
	if _, err := c.runner.Run(ctx, args...); err != nil {
		return fmt.Errorf("staging release files: %w", err)
	}
	return nil
}

// Commit records the staged changes with message.
func (c *Client) Commit(ctx context.Context, message string) error {
	if _, err := c.runner.Run(ctx, "commit", "-m", message); err != nil {
		return fmt.Errorf("committing release: %w", err)
	}
	return nil
}

// Tag creates an annotated tag named and described by name.
func (c *Client) Tag(ctx context.Context, name string) error {
	if _, err := c.runner.Run(ctx, "tag", "-a", name, "-m", name); err != nil {
		return fmt.Errorf("tagging release %s: %w", name, err)
	}
	return nil
}

// Push pushes ref to the configured remote. extra is appended verbatim.
func (c *Client) Push(ctx context.Context, ref string, extra ...string) error {
	if ref == "" {
		ref = "HEAD"
	}
	args := append([]string{"push", c.remote, ref}, extra...)
	if _, err := c.runner.Run(ctx, args...); err != nil {
		return fmt.Errorf("pushing to %s: %w", c.remote, err)
	}
	return nil
}
