package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	notificationdomain "github.com/gewgegeg/BAT3D/internal/notification/domain"
	orderdomain "github.com/gewgegeg/BAT3D/internal/order/domain"
	"github.com/gewgegeg/BAT3D/internal/providers/email"
	userdomain "github.com/gewgegeg/BAT3D/internal/user/domain"
	"github.com/gewgegeg/BAT3D/pkg/money"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Email email.Provider
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	email email.Provider
}

func New(p Params) notificationdomain.Dispatcher {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("notification.service"),
		email: p.Email,
	}
}

var successTmpl = template.Must(template.New("payment_success").Parse(`
<p>Здравствуйте, {{.Name}}!</p>
<p>Оплата заказа №{{.OrderID}} на сумму {{.Total}} ₽ успешно получена{{if .PaidAt}} ({{.PaidAt}}){{end}}.</p>
{{if .Items}}<ul>{{range .Items}}<li>{{.Title}} × {{.Quantity}}</li>{{end}}</ul>{{end}}
<p>Заказ скоро будет обработан.</p>
`))

var cancelledTmpl = template.Must(template.New("payment_cancelled").Parse(`
<p>Здравствуйте, {{.Name}}!</p>
<p>Платеж по заказу №{{.OrderID}} на сумму {{.Total}} ₽ был отменен.</p>
<p>Причина: {{.Reason}}.</p>
<p>Вы можете попробовать оплатить заказ снова из личного кабинета.</p>
`))

type emailData struct {
	Name    string
	OrderID int64
	Total   string
	PaidAt  string
	Reason  string
	Items   []orderdomain.OrderItem
}

func (s *Service) SendPaymentSucceeded(ctx context.Context, order *orderdomain.Order) error {
	user, err := s.findUser(ctx, order.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		s.log.Warn("success email skipped, user has no address", zap.Int64("order_id", order.ID))
		return nil
	}

	data := emailData{
		Name:    user.GreetingName(),
		OrderID: order.ID,
		Total:   money.Format(order.TotalCost()),
		Items:   order.Items,
	}
	if order.PaidAt != nil {
		data.PaidAt = order.PaidAt.Format("02.01.2006 15:04")
	}

	subject := fmt.Sprintf("Заказ №%d оплачен", order.ID)
	if err := s.send(ctx, user.Email, subject, successTmpl, data); err != nil {
		return err
	}
	s.log.Info("success email sent", zap.Int64("order_id", order.ID), zap.String("to", user.Email))
	return nil
}

func (s *Service) SendPaymentCancelled(ctx context.Context, order *orderdomain.Order, reason string) error {
	user, err := s.findUser(ctx, order.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		s.log.Warn("cancellation email skipped, user has no address", zap.Int64("order_id", order.ID))
		return nil
	}

	if reason == "" {
		reason = "не указана"
	}
	data := emailData{
		Name:    user.GreetingName(),
		OrderID: order.ID,
		Total:   money.Format(order.TotalCost()),
		Reason:  reason,
	}

	subject := fmt.Sprintf("Платеж по заказу №%d отменен", order.ID)
	if err := s.send(ctx, user.Email, subject, cancelledTmpl, data); err != nil {
		return err
	}
	s.log.Info("cancellation email sent", zap.Int64("order_id", order.ID), zap.String("to", user.Email))
	return nil
}

func (s *Service) findUser(ctx context.Context, userID int64) (*userdomain.User, error) {
	var user userdomain.User
	err := s.db.WithContext(ctx).
		Where("id = ?", userID).
		Limit(1).
		Find(&user).Error
	if err != nil {
		return nil, err
	}
	if user.ID == 0 || user.Email == "" {
		return nil, nil
	}
	return &user, nil
}

func (s *Service) send(ctx context.Context, to string, subject string, tmpl *template.Template, data emailData) error {
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("render email: %w", err)
	}
	return s.email.Send(ctx, []string{to}, subject, body.String())
}
