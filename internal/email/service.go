package email

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"time"

	"github.com/ahnafi/gym-management-app-sub000/internal/gymclass"
	"github.com/ahnafi/gym-management-app-sub000/internal/logger"
	"github.com/ahnafi/gym-management-app-sub000/internal/membership"
	"github.com/ahnafi/gym-management-app-sub000/internal/metrics"
	"github.com/ahnafi/gym-management-app-sub000/internal/payment"
	"github.com/ahnafi/gym-management-app-sub000/internal/user"

	"github.com/redis/go-redis/v9"
)

const (
	queueKey    = "emails"
	failedKey   = "emails:failed"
	maxAttempts = 3
	dateLayout  = "Jan 2, 2006"
)

const (
	TypeMembership   = "membership"
	TypeBooking      = "booking"
	TypeCancellation = "cancellation"
	TypeReceipt      = "receipt"
)

type EmailJob struct {
	Type    string    `json:"type"`
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

type Config struct {
	From     string
	FromName string
	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
}

// SendFunc delivers one message. It defaults to net/smtp.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Service struct {
	redis      *redis.Client
	cfg        Config
	send       SendFunc
	loc        *time.Location
	retryDelay time.Duration
}

func New(client *redis.Client, cfg Config, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		redis:      client,
		cfg:        cfg,
		send:       smtp.SendMail,
		loc:        loc,
		retryDelay: 5 * time.Second,
	}
}

// Send queues a message; the worker started by Start delivers it.
func (s *Service) Send(ctx context.Context, emailType, to, name, subject, body string) error {
	job := EmailJob{
		Type:    emailType,
		To:      to,
		Name:    name,
		Subject: subject,
		Body:    body,
		Created: time.Now(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal email job: %w", err)
	}

	if err := s.redis.LPush(ctx, queueKey, string(data)).Err(); err != nil {
		metrics.RecordEmail(emailType, "queue_failed")
		logger.Error("failed to queue email", "to", to, "type", emailType, "error", err.Error())
		return err
	}

	logger.Info("email queued", "to", to, "type", emailType)
	return nil
}

func (s *Service) Start(ctx context.Context) {
	logger.Info("email worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("email worker stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		return
	}

	var job EmailJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Errorf("bad email payload: %v", err)
		return
	}
	s.deliver(ctx, job)
	s.QueueLength(ctx)
}

func (s *Service) deliver(ctx context.Context, job EmailJob) {
	job.Tries++
	if err := s.sendNow(job); err != nil {
		logger.Error("email delivery failed", "to", job.To, "attempt", job.Tries, "error", err.Error())

		if job.Tries < maxAttempts {
			time.Sleep(s.retryDelay)
			data, _ := json.Marshal(job)
			s.redis.LPush(ctx, queueKey, string(data))
			metrics.RecordEmail(job.Type, "retry")
			return
		}
		metrics.RecordEmail(job.Type, "failed")
		s.saveFailed(ctx, job, err)
		return
	}

	metrics.RecordEmail(job.Type, "sent")
	logger.Info("email sent", "to", job.To, "type", job.Type)
}

func (s *Service) sendNow(job EmailJob) error {
	message := fmt.Sprintf("From: %s <%s>\r\n", s.cfg.FromName, s.cfg.From)
	message += fmt.Sprintf("To: %s\r\n", job.To)
	message += fmt.Sprintf("Subject: %s\r\n", job.Subject)
	message += "\r\n" + job.Body

	var auth smtp.Auth
	if s.cfg.SMTPUser != "" && s.cfg.SMTPPass != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)
	}

	addr := s.cfg.SMTPHost + ":" + s.cfg.SMTPPort
	return s.send(addr, auth, s.cfg.From, []string{job.To}, []byte(message))
}

func (s *Service) saveFailed(ctx context.Context, job EmailJob, err error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(ctx, failedKey, string(data))
	logger.Error("email moved to failed queue", "to", job.To, "type", job.Type)
}

// QueueLength reports pending jobs and refreshes the queue gauge.
func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	metrics.EmailQueueLength.Set(float64(length))
	return length
}

func (s *Service) Close() error {
	return s.redis.Close()
}

func (s *Service) MembershipGranted(ctx context.Context, u *user.User, pkg *membership.Package, h *membership.History) error {
	subject := "Membership Confirmed - " + pkg.Name
	body := fmt.Sprintf(`Hi %s,

Your %s membership is confirmed.

Status: %s
Valid from: %s
Valid until: %s

See you at the gym!

- GymHub Team`, u.Name, pkg.Name, h.Status, h.StartDate.Format(dateLayout), h.EndDate.Format(dateLayout))

	return s.Send(ctx, TypeMembership, u.Email, u.Name, subject, body)
}

func (s *Service) ClassBooked(ctx context.Context, u *user.User, class *gymclass.GymClass, sched *gymclass.Schedule) error {
	subject := "Booking Confirmed - " + class.Name
	body := fmt.Sprintf(`Hi %s,

Your class booking is confirmed!

Class: %s
Time: %s

Bookings can be cancelled up to 24 hours before the class starts.

- GymHub Team`, u.Name, class.Name, s.when(sched))

	return s.Send(ctx, TypeBooking, u.Email, u.Name, subject, body)
}

func (s *Service) BookingCancelled(ctx context.Context, u *user.User, class *gymclass.GymClass, sched *gymclass.Schedule) error {
	subject := "Booking Cancelled - " + class.Name
	body := fmt.Sprintf(`Hi %s,

Your booking has been cancelled:

Class: %s
Time: %s


- GymHub Team`, u.Name, class.Name, s.when(sched))

	return s.Send(ctx, TypeCancellation, u.Email, u.Name, subject, body)
}

func (s *Service) PaymentReceived(ctx context.Context, u *user.User, t *payment.Transaction) error {
	subject := "Payment Received - " + t.Code
	body := fmt.Sprintf(`Hi %s,

We received your payment.

Transaction: %s
Amount: Rp %s

Thank you!

- GymHub Team`, u.Name, t.Code, t.Amount.StringFixed(2))

	return s.Send(ctx, TypeReceipt, u.Email, u.Name, subject, body)
}

func (s *Service) when(sched *gymclass.Schedule) string {
	startsAt, err := sched.StartsAt(s.loc)
	if err != nil {
		return sched.Date.Format(dateLayout) + " " + sched.StartTime
	}
	return startsAt.Format("Jan 2, 2006 at 3:04 PM")
}
