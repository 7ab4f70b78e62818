package endpoint

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/simplert/srt/internal/config"
	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

const tunDevice = "/dev/net/tun"

func openTunDevice(cfg config.TunConfig) (*os.File, error) {
	fd, err := unix.Open(tunDevice, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", tunDevice, err)
	}

	ifr, err := unix.NewIfreq(cfg.Name)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}
	ifr.SetUint16(unix.IFF_TUN | unix.IFF_NO_PI)
	if err := unix.IoctlIfreq(fd, unix.TUNSETIFF, ifr); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("TUNSETIFF: %w", err)
	}

	ifname := ifr.Name()
	if err := configureIface(ifname, cfg); err != nil {
		unix.Close(fd)
		return nil, err
	}

	slog.Info("tun device ready", "iface", ifname, "address", cfg.Address, "mtu", cfg.MTU)
	return os.NewFile(uintptr(fd), ifname), nil
}

func configureIface(ifname string, cfg config.TunConfig) error {
	link, err := netlink.LinkByName(ifname)
	if err != nil {
		return fmt.Errorf("failed to lookup interface %v: %w", ifname, err)
	}

	if cfg.Address != "" {
		addr, err := netlink.ParseAddr(cfg.Address)
		if err != nil {
			return fmt.Errorf("parsing address %q: %w", cfg.Address, err)
		}
		if err := netlink.AddrAdd(link, addr); err != nil {
			return fmt.Errorf("failed to add IP address %v to %v: %w", addr, ifname, err)
		}
	}

	if err := netlink.LinkSetMTU(link, cfg.MTU); err != nil {
		return fmt.Errorf("failed to set MTU for %v: %w", ifname, err)
	}

	if err := netlink.LinkSetUp(link); err != nil {
		return fmt.Errorf("failed to set interface %v to UP state: %w", ifname, err)
	}
	return nil
}
