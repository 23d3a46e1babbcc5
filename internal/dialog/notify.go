package dialog

import (
	"context"
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	notifyDest      = "org.freedesktop.Notifications"
	notifyPath      = dbus.ObjectPath("/org/freedesktop/Notifications")
	notifyInterface = "org.freedesktop.Notifications"

	urgencyLow      byte = 0
	urgencyNormal   byte = 1
	urgencyCritical byte = 2
)

var errBusClosed = errors.New("session bus closed")

// notificationBus is the slice of the freedesktop notification service the
// presenter uses. Implementations subscribe to NotificationClosed when they
// are opened so no close event is missed.
type notificationBus interface {
	Notify(ctx context.Context, appName, summary, body string, urgency byte) (uint32, error)
	WaitClosed(ctx context.Context, id uint32) error
	CloseNotification(id uint32) error
	Close() error
}

// NotifyPresenter shows dialogs as desktop notifications over the D-Bus
// session bus. Error dialogs are sent with critical urgency and never expire,
// and Present blocks until the notification is closed.
type NotifyPresenter struct {
	AppName string

	dial func() (notificationBus, error)
}

// NewNotifyPresenter returns a presenter using the session bus.
func NewNotifyPresenter(appName string) *NotifyPresenter {
	return &NotifyPresenter{AppName: appName, dial: dialSessionBus}
}

func (p *NotifyPresenter) Present(ctx context.Context, msg Message) error {
	dial := p.dial
	if dial == nil {
		dial = dialSessionBus
	}

	bus, err := dial()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer bus.Close()

	id, err := bus.Notify(ctx, p.AppName, msg.Title, msg.Body, urgencyFor(msg.Severity))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	if err := bus.WaitClosed(ctx, id); err != nil {
		if ctx.Err() != nil {
			_ = bus.CloseNotification(id)
		}
		return err
	}
	return nil
}

func urgencyFor(s Severity) byte {
	switch s {
	case SeverityError:
		return urgencyCritical
	case SeverityWarning:
		return urgencyNormal
	default:
		return urgencyLow
	}
}

type dbusBus struct {
	conn    *dbus.Conn
	obj     dbus.BusObject
	signals chan *dbus.Signal
	match   []dbus.MatchOption
}

func dialSessionBus() (notificationBus, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connecting to session bus: %w", err)
	}

	match := []dbus.MatchOption{
		dbus.WithMatchObjectPath(notifyPath),
		dbus.WithMatchInterface(notifyInterface),
		dbus.WithMatchMember("NotificationClosed"),
	}
	if err := conn.AddMatchSignal(match...); err != nil {
		conn.Close()
		return nil, fmt.Errorf("subscribing to NotificationClosed: %w", err)
	}

	signals := make(chan *dbus.Signal, 16)
	conn.Signal(signals)

	return &dbusBus{
		conn:    conn,
		obj:     conn.Object(notifyDest, notifyPath),
		signals: signals,
		match:   match,
	}, nil
}

func (b *dbusBus) Notify(ctx context.Context, appName, summary, body string, urgency byte) (uint32, error) {
	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(urgency),
	}

	var id uint32
	err := b.obj.CallWithContext(ctx, notifyInterface+".Notify", 0,
		appName,
		uint32(0),
		"dialog-error",
		summary,
		body,
		[]string{"default", "OK"},
		hints,
		int32(0),
	).Store(&id)
	if err != nil {
		return 0, fmt.Errorf("calling Notify: %w", err)
	}
	return id, nil
}

func (b *dbusBus) WaitClosed(ctx context.Context, id uint32) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sig, ok := <-b.signals:
			if !ok {
				return errBusClosed
			}
			if sig.Name != notifyInterface+".NotificationClosed" || len(sig.Body) == 0 {
				continue
			}
			if got, ok := sig.Body[0].(uint32); ok && got == id {
				return nil
			}
		}
	}
}

func (b *dbusBus) CloseNotification(id uint32) error {
	return b.obj.Call(notifyInterface+".CloseNotification", 0, id).Err
}

func (b *dbusBus) Close() error {
	_ = b.conn.RemoveMatchSignal(b.match...)
	b.conn.RemoveSignal(b.signals)
	return b.conn.Close()
}
