package client

import (
	"net/url"

	"github.com/cadenceworks/foreman/pkg/api/http/common"
	"github.com/cadenceworks/foreman/pkg/structs"
)

type Client struct {
	url *url.URL
}

func New(address string) (*Client, error) {
	u, err := url.Parse(address)
	return &Client{url: u}, err
}

func (c *Client) Dispatch(req *structs.DispatchRequest) (*structs.Task, error) {
	addr := c.addr(common.API_TASKS)
	var out structs.Task
	return &out, genericPost(addr, req, &out)
}

func (c *Client) Cancel(taskID string) (*structs.Task, error) {
	addr := c.addr(common.API_TASKS + "/" + taskID + "/cancel")
	var out structs.Task
	return &out, genericPost(addr, nil, &out)
}

func (c *Client) Task(id string) (*structs.Task, error) {
	addr := c.addr(common.API_TASKS + "/" + id)
	var out structs.Task
	return &out, genericGet(addr, &out)
}

func (c *Client) Tasks(q *structs.Query) ([]*structs.Task, error) {
	addr := c.addr(common.API_TASKS)
	setQueryString(addr, q)
	var out []*structs.Task
	return out, genericGet(addr, &out)
}

func (c *Client) CreateGroup(req *structs.CreateGroupRequest) (*structs.TaskGroup, error) {
	addr := c.addr(common.API_GROUPS)
	var out structs.TaskGroup
	return &out, genericPost(addr, req, &out)
}

func (c *Client) Group(id string) (*structs.GroupSummary, error) {
	addr := c.addr(common.API_GROUPS + "/" + id)
	var out structs.GroupSummary
	return &out, genericGet(addr, &out)
}

func (c *Client) Groups(q *structs.Query) ([]*structs.TaskGroup, error) {
	addr := c.addr(common.API_GROUPS)
	setQueryString(addr, q)
	var out []*structs.TaskGroup
	return out, genericGet(addr, &out)
}

func (c *Client) Workers() ([]*structs.Worker, error) {
	addr := c.addr(common.API_WORKERS)
	var out []*structs.Worker
	return out, genericGet(addr, &out)
}

func (c *Client) addr(path string) *url.URL {
	return &url.URL{Scheme: c.url.Scheme, Host: c.url.Host, Path: path}
}
