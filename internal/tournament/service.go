package tournament

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/saoodchoudhary/RBMEsports-Backend/internal/coupon"
	"github.com/saoodchoudhary/RBMEsports-Backend/internal/gateway"
	"github.com/saoodchoudhary/RBMEsports-Backend/internal/payment"
	"github.com/saoodchoudhary/RBMEsports-Backend/internal/user"
)

var (
	ErrGameProfileRequired = errors.New("game profile must be set before registering")
	ErrInvalidTeamSize     = errors.New("team roster does not match tournament mode")
	ErrTeamNameRequired    = errors.New("team name is required for this mode")
)

// Service owns the registration flow: slot reservation, coupon pricing and
// payment record creation happen atomically, so a crash mid-registration
// never leaves a priced payment without a held slot or vice versa.
type Service interface {
	Create(ctx context.Context, req CreateRequest, createdBy int) (*Tournament, error)
	Get(ctx context.Context, id int) (*Tournament, error)
	List(ctx context.Context, status Status, game string, limit, offset int) ([]Tournament, error)
	Update(ctx context.Context, id int, req UpdateRequest) (*Tournament, error)
	SetRoom(ctx context.Context, id int, roomID, roomPassword string) error
	Cancel(ctx context.Context, id int) error
	Register(ctx context.Context, userID, tournamentID int, req RegisterRequest) (*Registration, error)
	PreviewCoupon(ctx context.Context, userID, tournamentID int, code string) (*coupon.Result, error)
	Participants(ctx context.Context, tournamentID int) ([]Participant, error)
	MyRegistration(ctx context.Context, tournamentID, userID int) (*Participant, *Team, error)
	ListMine(ctx context.Context, userID int) ([]Tournament, error)
}

type service struct {
	repo     Store
	users    user.Store
	engine   *coupon.Engine
	usage    payment.UsageCommitter
	payments payment.Store
}

func NewService(repo Store, users user.Store, engine *coupon.Engine, usage payment.UsageCommitter, payments payment.Store) Service {
	return &service{
		repo:     repo,
		users:    users,
		engine:   engine,
		usage:    usage,
		payments: payments,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest, createdBy int) (*Tournament, error) {
	return s.repo.Create(ctx, req, createdBy)
}

func (s *service) Get(ctx context.Context, id int) (*Tournament, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, status Status, game string, limit, offset int) ([]Tournament, error) {
	return s.repo.List(ctx, status, game, limit, offset)
}

func (s *service) Update(ctx context.Context, id int, req UpdateRequest) (*Tournament, error) {
	return s.repo.Update(ctx, id, req)
}

func (s *service) SetRoom(ctx context.Context, id int, roomID, roomPassword string) error {
	return s.repo.SetRoom(ctx, id, roomID, roomPassword)
}

func (s *service) Cancel(ctx context.Context, id int) error {
	return s.repo.UpdateStatus(ctx, id, StatusCancelled)
}

// Register holds a slot and opens the payment that settles it.
//
// The whole flow runs in one transaction against a locked tournament row:
// status and duplicate checks, the guarded slot reservation, team and
// participant inserts and the payment record. Coupons are validated here but
// their usage is committed only when the payment succeeds. A zero final
// amount settles the payment immediately without touching any gateway.
func (s *service) Register(ctx context.Context, userID, tournamentID int, req RegisterRequest) (*Registration, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.HasGameProfile() {
		return nil, ErrGameProfileRequired
	}

	var reg *Registration
	err = s.repo.InTx(ctx, func(tx *sqlx.Tx) error {
		t, err := s.repo.GetForUpdateTx(ctx, tx, tournamentID)
		if err != nil {
			return err
		}
		if t.Status != StatusRegistrationOpen {
			return ErrRegistrationClosed
		}

		size := t.Mode.TeamSize()
		if size > 1 {
			if req.TeamName == "" {
				return ErrTeamNameRequired
			}
			if len(req.Members) != size-1 {
				return ErrInvalidTeamSize
			}
		} else if len(req.Members) > 0 {
			return ErrInvalidTeamSize
		}

		registered, err := s.repo.IsRegisteredTx(ctx, tx, tournamentID, userID)
		if err != nil {
			return err
		}
		if registered {
			return ErrAlreadyRegistered
		}

		if err := s.repo.ReserveSlotsTx(ctx, tx, tournamentID, size); err != nil {
			return err
		}

		result, err := s.engine.Apply(ctx, req.CouponCode, coupon.Applicant{
			UserID: userID,
			BGMIID: u.BGMIID,
		}, tournamentID, t.EntryFee)
		if err != nil {
			return err
		}

		var team *Team
		var teamID *int
		if size > 1 {
			team, err = s.repo.CreateTeamTx(ctx, tx, tournamentID, userID, req.TeamName)
			if err != nil {
				return err
			}
			teamID = &team.ID

			captain := MemberInput{Name: u.Name, BGMIID: u.BGMIID, InGameName: u.InGameName}
			captainMember, err := s.repo.AddTeamMemberTx(ctx, tx, team.ID, &userID, captain)
			if err != nil {
				return err
			}
			team.Members = append(team.Members, *captainMember)
			for _, m := range req.Members {
				member, err := s.repo.AddTeamMemberTx(ctx, tx, team.ID, nil, m)
				if err != nil {
					return err
				}
				team.Members = append(team.Members, *member)
			}
		}

		p, err := s.repo.CreateParticipantTx(ctx, tx, &Participant{
			TournamentID:  tournamentID,
			UserID:        userID,
			TeamID:        teamID,
			BGMIID:        u.BGMIID,
			InGameName:    u.InGameName,
			Status:        ParticipantPendingPayment,
			PaymentStatus: PayPending,
		})
		if err != nil {
			return err
		}

		payType := payment.TypeIndividual
		if size > 1 {
			payType = payment.TypeTeam
		}
		pay := &payment.Payment{
			Type:           payType,
			UserID:         userID,
			TournamentID:   tournamentID,
			TeamID:         teamID,
			BaseAmount:     t.EntryFee,
			DiscountAmount: result.DiscountAmount,
			Amount:         result.FinalAmount,
			Status:         payment.StatusPending,
			Gateway:        payment.GatewayNone,
		}
		if result.Coupon != nil {
			pay.CouponID = &result.Coupon.ID
			pay.CouponCode = result.Coupon.Code
		}
		pay, err = s.payments.CreateTx(ctx, tx, pay)
		if err != nil {
			return err
		}
		if err := s.repo.AttachPaymentTx(ctx, tx, p.ID, pay.ID); err != nil {
			return err
		}
		p.PaymentID = &pay.ID

		settled := false
		if pay.Amount == 0 {
			if err := s.payments.MarkSuccessTx(ctx, tx, pay, payment.GatewayNone, gateway.Callback{}, nil); err != nil {
				return err
			}
			if err := s.repo.MarkPaidTx(ctx, tx, pay); err != nil {
				return err
			}
			if pay.CouponID != nil {
				if err := s.usage.CommitUsageTx(ctx, tx, *pay.CouponID, userID); err != nil {
					return err
				}
			}
			p.Status = ParticipantConfirmed
			p.PaymentStatus = PayPaid
			settled = true
		}

		reg = &Registration{
			Participant: p,
			Team:        team,
			PaymentID:   pay.ID,
			Amount:      pay.Amount,
			Discount:    pay.DiscountAmount,
			Settled:     settled,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// PreviewCoupon prices a coupon against a tournament without holding a slot.
func (s *service) PreviewCoupon(ctx context.Context, userID, tournamentID int, code string) (*coupon.Result, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	t, err := s.repo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return s.engine.Apply(ctx, code, coupon.Applicant{UserID: userID, BGMIID: u.BGMIID}, tournamentID, t.EntryFee)
}

func (s *service) Participants(ctx context.Context, tournamentID int) ([]Participant, error) {
	return s.repo.Participants(ctx, tournamentID)
}

func (s *service) MyRegistration(ctx context.Context, tournamentID, userID int) (*Participant, *Team, error) {
	return s.repo.MyRegistration(ctx, tournamentID, userID)
}

func (s *service) ListMine(ctx context.Context, userID int) ([]Tournament, error) {
	return s.repo.ListMine(ctx, userID)
}
