package docker

import (
	"context"
	"fmt"

	"github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
)

type StartOptions struct {
	Image string
	Name  string
	Cmd   []string
	Env   []string
	// Ports maps host port to container port.
	Ports map[int]int
}

// StartDetached creates and starts a long-running container. The container
// keeps running after this returns; use Remove to tear it down.
func (c *Client) StartDetached(ctx context.Context, opts StartOptions) (string, error) {
	exposed := nat.PortSet{}
	bindings := nat.PortMap{}
	for hostPort, containerPort := range opts.Ports {
		port, err := nat.NewPort("tcp", fmt.Sprintf("%d", containerPort))
		if err != nil {
			return "", fmt.Errorf("invalid container port %d: %w", containerPort, err)
		}
		exposed[port] = struct{}{}
		bindings[port] = []nat.PortBinding{{HostIP: "0.0.0.0", HostPort: fmt.Sprintf("%d", hostPort)}}
	}

	resp, err := c.cli.ContainerCreate(ctx, &container.Config{
		Image:        opts.Image,
		Cmd:          opts.Cmd,
		Env:          opts.Env,
		ExposedPorts: exposed,
	}, &container.HostConfig{
		PortBindings: bindings,
	}, nil, nil, opts.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create container: %w", err)
	}

	if err := c.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		_ = c.cli.ContainerRemove(ctx, resp.ID, container.RemoveOptions{Force: true})
		return "", fmt.Errorf("failed to start container: %w", err)
	}

	c.logger.
		With("container_id", resp.ID[:12]).
		With("name", opts.Name).
		Info("container started")

	return resp.ID, nil
}

// Remove force-removes a container by name or ID. Removing a container that
// does not exist is not an error.
func (c *Client) Remove(ctx context.Context, nameOrID string) error {
	err := c.cli.ContainerRemove(ctx, nameOrID, container.RemoveOptions{Force: true})
	if err != nil && !errdefs.IsNotFound(err) {
		return fmt.Errorf("failed to remove container %s: %w", nameOrID, err)
	}
	return nil
}
