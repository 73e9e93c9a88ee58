/*
Copyright © 2023 - 2026 uefikit authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package firmware

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"time"

	"github.com/insomniacslk/dhcp/dhcpv4"
	"github.com/insomniacslk/dhcp/dhcpv4/nclient4"
	"github.com/pin/tftp/v3"

	"github.com/uefikit/bootmgr/pkg/types"
)

const tftpTimeout = 5 * time.Second

type hostedNetwork struct {
	log     types.Logger
	started bool
	iface   string

	// last completed transfer, so FileSize followed by ReadFile fetches
	// once.
	cachedKey string
	cached    []byte
}

// NewNetwork returns a Network over the host stack: one broadcast DHCPv4
// discover for the boot offer and a plain TFTP client.
func NewNetwork(log types.Logger) types.Network {
	return &hostedNetwork{log: log}
}

func (n *hostedNetwork) Start(ctx context.Context) error {
	if n.started {
		return nil
	}
	ifaces, err := net.Interfaces()
	if err != nil {
		return err
	}
	for _, i := range ifaces {
		if i.Flags&net.FlagLoopback != 0 || i.Flags&net.FlagUp == 0 {
			continue
		}
		n.iface = i.Name
		n.started = true
		return nil
	}
	return fmt.Errorf("no usable network interface")
}

func (n *hostedNetwork) Discover(ctx context.Context) (*types.NetworkOffer, error) {
	cli, err := nclient4.New(n.iface)
	if err != nil {
		return nil, err
	}
	defer cli.Close()

	offer, err := cli.DiscoverOffer(ctx,
		dhcpv4.WithRequestedOptions(dhcpv4.OptionBootfileName, dhcpv4.OptionTFTPServerName))
	if err != nil {
		return nil, err
	}

	server := offer.ServerIPAddr
	if next := offer.Options.Get(dhcpv4.OptionTFTPServerName); len(next) > 0 {
		if ip := net.ParseIP(string(bytes.TrimRight(next, "\x00"))); ip != nil {
			server = ip
		}
	}
	bootFile := offer.BootFileNameOption()
	if bootFile == "" {
		bootFile = offer.BootFileName
	}
	return &types.NetworkOffer{
		Server:   server,
		BootFile: bootFile,
	}, nil
}

func (n *hostedNetwork) FileSize(ctx context.Context, server net.IP, path string) (int64, error) {
	data, err := n.fetch(server, path)
	if err != nil {
		return 0, err
	}
	return int64(len(data)), nil
}

func (n *hostedNetwork) ReadFile(ctx context.Context, server net.IP, path string) ([]byte, error) {
	return n.fetch(server, path)
}

func (n *hostedNetwork) fetch(server net.IP, path string) ([]byte, error) {
	key := server.String() + "/" + path
	if n.cachedKey == key {
		return n.cached, nil
	}

	cli, err := tftp.NewClient(net.JoinHostPort(server.String(), "69"))
	if err != nil {
		return nil, err
	}
	cli.SetTimeout(tftpTimeout)

	wt, err := cli.Receive(path, "octet")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, err
	}

	n.cachedKey = key
	n.cached = buf.Bytes()
	return n.cached, nil
}
