package artifact

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/luminary-arts/memberhub/internal/config"
	"github.com/luminary-arts/memberhub/internal/observability/metrics"
	"github.com/luminary-arts/memberhub/internal/providers/email"
	ticketdomain "github.com/luminary-arts/memberhub/internal/ticket/domain"
	ticketedeventdomain "github.com/luminary-arts/memberhub/internal/ticketedevent/domain"
)

const qrImageSize = 512

// Generator renders a QR ticket image, stores it under the artifact
// directory, and emails the purchaser. It implements Processor.
type Generator struct {
	db         *gorm.DB
	tickets    ticketdomain.Repository
	events     ticketedeventdomain.Repository
	mailer     email.Provider
	metrics    *metrics.WebhookMetrics
	log        *zap.Logger
	dir        string
	publicBase string
}

func NewGenerator(
	db *gorm.DB,
	tickets ticketdomain.Repository,
	events ticketedeventdomain.Repository,
	mailer email.Provider,
	webhookMetrics *metrics.WebhookMetrics,
	cfg config.Config,
	log *zap.Logger,
) *Generator {
	return &Generator{
		db:         db,
		tickets:    tickets,
		events:     events,
		mailer:     mailer,
		metrics:    webhookMetrics,
		log:        log.Named("ticket.artifact"),
		dir:        cfg.Ticket.ArtifactDir,
		publicBase: cfg.Ticket.PublicBaseURL,
	}
}

func (g *Generator) Process(ctx context.Context, job *Job) error {
	ticketID, err := snowflake.ParseString(job.TicketID)
	if err != nil {
		g.metrics.RecordArtifactJob("invalid")
		return fmt.Errorf("parse ticket id %q: %w", job.TicketID, err)
	}

	if err := g.Generate(ctx, ticketID); err != nil {
		g.metrics.RecordArtifactJob("error")
		return err
	}
	g.metrics.RecordArtifactJob("ok")
	return nil
}

// Generate renders the ticket image and emails it. Also used directly
// by the admin regenerate endpoint.
func (g *Generator) Generate(ctx context.Context, ticketID snowflake.ID) error {
	ticket, err := g.tickets.FindByID(ctx, g.db, ticketID)
	if err != nil {
		return fmt.Errorf("load ticket: %w", err)
	}
	if ticket == nil {
		return ticketdomain.ErrNotFound
	}

	event, err := g.events.FindByID(ctx, g.db, ticket.TicketedEventID)
	if err != nil {
		return fmt.Errorf("load ticketed event: %w", err)
	}

	imageURL, err := g.renderQR(ticket)
	if err != nil {
		return err
	}

	var emailSentAt *time.Time
	if mailErr := g.sendTicketEmail(ctx, ticket, event, imageURL); mailErr != nil {
		g.log.Error("ticket email failed",
			zap.String("ticket_id", ticket.ID.String()),
			zap.String("purchaser_email", ticket.PurchaserEmail),
			zap.Error(mailErr),
		)
	} else {
		now := time.Now().UTC()
		emailSentAt = &now
	}

	if err := g.tickets.UpdateArtifact(ctx, g.db, ticket.ID, imageURL, emailSentAt); err != nil {
		return fmt.Errorf("update ticket artifact: %w", err)
	}

	g.log.Info("ticket artifact generated",
		zap.String("ticket_id", ticket.ID.String()),
		zap.String("image_url", imageURL),
		zap.Bool("email_sent", emailSentAt != nil),
	)
	return nil
}

func (g *Generator) renderQR(ticket *ticketdomain.Ticket) (string, error) {
	verifyURL := fmt.Sprintf("%s/t/%s", g.publicBase, ticket.TicketCode)

	code, err := qr.Encode(verifyURL, qr.M, qr.Auto)
	if err != nil {
		return "", fmt.Errorf("encode qr: %w", err)
	}
	code, err = barcode.Scale(code, qrImageSize, qrImageSize)
	if err != nil {
		return "", fmt.Errorf("scale qr: %w", err)
	}

	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}

	filename := ticket.TicketCode + ".png"
	file, err := os.Create(filepath.Join(g.dir, filename))
	if err != nil {
		return "", fmt.Errorf("create artifact file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, code); err != nil {
		return "", fmt.Errorf("write artifact png: %w", err)
	}

	return fmt.Sprintf("%s/artifacts/%s", g.publicBase, filename), nil
}

func (g *Generator) sendTicketEmail(ctx context.Context, ticket *ticketdomain.Ticket, event *ticketedeventdomain.TicketedEvent, imageURL string) error {
	title := "your event"
	if event != nil {
		title = event.Title
	}

	subject := fmt.Sprintf("Your ticket for %s", title)
	body := fmt.Sprintf(
		`<p>Hi %s,</p>
<p>Thanks for supporting us! Your ticket for <strong>%s</strong> is attached below.</p>
<p><img src=%q alt="Your ticket" /></p>
<p>Show the QR code at the door. Ticket code: <code>%s</code></p>`,
		ticket.PurchaserName,
		title,
		imageURL,
		ticket.TicketCode,
	)
	return g.mailer.Send(ctx, []string{ticket.PurchaserEmail}, subject, body)
}
