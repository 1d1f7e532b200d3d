package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"omerta/internal/game"
)

// Bot bridges Discord prefix commands to the game core. It owns no game
// state; every command is one or more core calls.
type Bot struct {
	session *discordgo.Session
	svc     *game.Service
	prefix  string
	log     *slog.Logger
}

func New(token, prefix string, svc *game.Service, logger *slog.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentMessageContent

	b := &Bot{
		session: session,
		svc:     svc,
		prefix:  prefix,
		log:     logger,
	}
	session.AddHandler(b.onMessage)
	return b, nil
}

// Run opens the gateway connection and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	b.log.Info("bot connected", "prefix", b.prefix)
	<-ctx.Done()
	b.log.Info("bot shutting down")
	return b.session.Close()
}

func (b *Bot) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if !strings.HasPrefix(m.Content, b.prefix) {
		return
	}
	fields := strings.Fields(strings.TrimPrefix(m.Content, b.prefix))
	if len(fields) == 0 {
		return
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := b.svc.EnsureUser(ctx, m.Author.ID, m.Author.Username); err != nil {
		b.fail(m, "ensure user", err)
		return
	}

	var err error
	switch name {
	case "balance", "bal":
		err = b.handleBalance(ctx, m, args)
	case "daily":
		err = b.handleDaily(ctx, m)
	case "transfer", "pay":
		err = b.handleTransfer(ctx, m, args)
	case "deposit", "dep":
		err = b.handleDeposit(ctx, m, args)
	case "withdraw", "with":
		err = b.handleWithdraw(ctx, m, args)
	case "rob":
		err = b.handleRob(ctx, m, args)
	case "turf":
		err = b.handleTurf(ctx, m, args)
	case "heist":
		err = b.handleHeist(ctx, m, args)
	case "hit":
		err = b.handleHit(ctx, m, args)
	case "family", "fam":
		err = b.handleFamily(ctx, m, args)
	case "leaderboard", "lb":
		err = b.handleLeaderboard(ctx, m, args)
	case "help":
		err = b.handleHelp(m)
	default:
		return
	}
	if err != nil {
		b.fail(m, name, err)
	}
}

// fail maps a core error to a player reply and logs unrecognized ones.
func (b *Bot) fail(m *discordgo.MessageCreate, op string, err error) {
	msg, known := userMessage(err)
	if !known {
		b.log.Error("command failed", "op", op, "user", m.Author.ID, "err", err)
	}
	b.reply(m, msg)
}

func (b *Bot) reply(m *discordgo.MessageCreate, content string) {
	if _, err := b.session.ChannelMessageSend(m.ChannelID, content); err != nil {
		b.log.Error("send reply", "channel", m.ChannelID, "err", err)
	}
}

func (b *Bot) replyEmbed(m *discordgo.MessageCreate, embed *discordgo.MessageEmbed) {
	if _, err := b.session.ChannelMessageSendEmbed(m.ChannelID, embed); err != nil {
		b.log.Error("send embed", "channel", m.ChannelID, "err", err)
	}
}

func (b *Bot) handleBalance(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	userID := m.Author.ID
	if len(args) > 0 {
		id, err := parseMention(args[0])
		if err != nil {
			return err
		}
		userID = id
	}
	acct, err := b.svc.Balance(ctx, userID)
	if err != nil {
		return err
	}
	b.replyEmbed(m, &discordgo.MessageEmbed{
		Title: acct.Username,
		Color: embedColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Cash", Value: game.FormatMoney(acct.Cash), Inline: true},
			{Name: "Bank", Value: game.FormatMoney(acct.Bank), Inline: true},
			{Name: "Reputation", Value: fmt.Sprintf("%d", acct.Reputation), Inline: true},
		},
	})
	return nil
}

func (b *Bot) handleDaily(ctx context.Context, m *discordgo.MessageCreate) error {
	res, err := b.svc.CollectDaily(ctx, m.Author.ID, time.Now())
	if err != nil {
		return err
	}
	b.reply(m, fmt.Sprintf("Your envelope: %s. Cash on hand: %s.",
		game.FormatMoney(res.Amount), game.FormatMoney(res.Cash)))
	return nil
}

func (b *Bot) handleTransfer(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	cmd, err := parseTransfer(args)
	if err != nil {
		return err
	}
	res, err := b.svc.Transfer(ctx, m.Author.ID, cmd.TargetID, cmd.Amount)
	if err != nil {
		return err
	}
	b.reply(m, fmt.Sprintf("Sent %s to %s. You hold %s.",
		game.FormatMoney(res.Amount), mention(cmd.TargetID), game.FormatMoney(res.SenderCash)))
	return nil
}

func (b *Bot) handleDeposit(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	cmd, err := parseBank(args, "deposit")
	if err != nil {
		return err
	}
	res, err := b.svc.Deposit(ctx, m.Author.ID, cmd.Amount)
	if err != nil {
		return err
	}
	b.reply(m, fmt.Sprintf("Deposited. Cash %s, bank %s.",
		game.FormatMoney(res.Cash), game.FormatMoney(res.Bank)))
	return nil
}

func (b *Bot) handleWithdraw(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	cmd, err := parseBank(args, "withdraw")
	if err != nil {
		return err
	}
	res, err := b.svc.Withdraw(ctx, m.Author.ID, cmd.Amount)
	if err != nil {
		return err
	}
	b.reply(m, fmt.Sprintf("Withdrawn. Cash %s, bank %s.",
		game.FormatMoney(res.Cash), game.FormatMoney(res.Bank)))
	return nil
}

func (b *Bot) handleRob(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	cmd, err := parseRob(args)
	if err != nil {
		return err
	}
	if cmd.TargetID == m.Author.ID {
		return usagef("you can't rob yourself")
	}
	res, err := b.svc.Rob(ctx, m.Author.ID, cmd.TargetID, time.Now())
	if err != nil {
		return err
	}
	if res.Success {
		b.reply(m, fmt.Sprintf("Clean job. You lifted %s off %s.",
			game.FormatMoney(res.Amount), mention(cmd.TargetID)))
	} else {
		b.reply(m, fmt.Sprintf("You got caught and fined %s.", game.FormatMoney(res.Fine)))
	}
	return nil
}

func (b *Bot) handleTurf(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	cmd, err := parseTurf(args)
	if err != nil {
		return err
	}
	switch cmd.Action {
	case "list":
		turfs, err := b.svc.ListTurfs(ctx)
		if err != nil {
			return err
		}
		var sb strings.Builder
		for _, t := range turfs {
			owner := "unclaimed"
			if t.OwnerFamilyName != "" {
				owner = t.OwnerFamilyName
			}
			fmt.Fprintf(&sb, "**%s** — %s/period ×%.1f — held by %s\n",
				t.Name, game.FormatMoney(t.BaseIncome), t.IncomeMultiplier, owner)
		}
		b.replyEmbed(m, &discordgo.MessageEmbed{
			Title:       "Turf map",
			Description: sb.String(),
			Color:       embedColor,
		})
		return nil
	case "info":
		t, err := b.svc.TurfByName(ctx, cmd.Name)
		if err != nil {
			return err
		}
		owner := "unclaimed"
		if t.OwnerFamilyName != "" {
			owner = t.OwnerFamilyName
		}
		b.replyEmbed(m, &discordgo.MessageEmbed{
			Title: t.Name,
			Color: embedColor,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Income", Value: fmt.Sprintf("%s ×%.1f per period", game.FormatMoney(t.BaseIncome), t.IncomeMultiplier), Inline: true},
				{Name: "Held by", Value: owner, Inline: true},
			},
		})
		return nil
	case "capture":
		fam, err := b.svc.UserFamily(ctx, m.Author.ID)
		if err != nil {
			return err
		}
		res, err := b.svc.CaptureTurf(ctx, m.Author.ID, cmd.Name, fam.ID, time.Now())
		if err != nil {
			return err
		}
		if res.PreviousOwner != "" {
			b.reply(m, fmt.Sprintf("**%s** taken from %s for %s.", res.TurfName, res.PreviousOwner, res.NewOwnerFamily))
		} else {
			b.reply(m, fmt.Sprintf("**%s** claimed for %s.", res.TurfName, res.NewOwnerFamily))
		}
		return nil
	case "income":
		fam, err := b.svc.UserFamily(ctx, m.Author.ID)
		if err != nil {
			return err
		}
		res, err := b.svc.CollectTurfIncome(ctx, m.Author.ID, fam.ID, time.Now())
		if err != nil {
			return err
		}
		b.reply(m, fmt.Sprintf("Collected %s from %d turf(s). Family bank: %s.",
			game.FormatMoney(res.Total), res.TurfsCollected, game.FormatMoney(res.FamilyBalance)))
		return nil
	}
	return nil
}

func (b *Bot) handleHeist(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	cmd, err := parseHeist(args)
	if err != nil {
		return err
	}
	fam, err := b.svc.UserFamily(ctx, m.Author.ID)
	if err != nil {
		return err
	}
	res, err := b.svc.StartHeist(ctx, m.Author.ID, fam.ID, cmd.Type, cmd.Participants, time.Now())
	if err != nil {
		return err
	}
	if res.Outcome.Success {
		b.reply(m, fmt.Sprintf("The %s job paid off: %s to the family bank (+%d rep).",
			res.Outcome.EventType, game.FormatMoney(res.Outcome.Reward), res.Outcome.ReputationDelta))
	} else {
		b.reply(m, fmt.Sprintf("The %s job went bad. Family fined %s; you're in jail for %s.",
			res.Outcome.EventType, game.FormatMoney(res.Outcome.Penalty), formatDuration(res.Outcome.JailTime)))
	}
	return nil
}

func (b *Bot) handleHit(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	cmd, err := parseHit(args)
	if err != nil {
		return err
	}
	switch cmd.Action {
	case "list":
		hits, err := b.svc.ListOpenHits(ctx)
		if err != nil {
			return err
		}
		if len(hits) == 0 {
			b.reply(m, "No open contracts.")
			return nil
		}
		var sb strings.Builder
		for _, h := range hits {
			fmt.Fprintf(&sb, "`%s` — %s on %s\n", h.ID, game.FormatMoney(h.Bounty), mention(h.TargetID))
		}
		b.replyEmbed(m, &discordgo.MessageEmbed{
			Title:       "Open contracts",
			Description: sb.String(),
			Color:       embedColor,
		})
		return nil
	case "request":
		fam, err := b.svc.UserFamily(ctx, m.Author.ID)
		if err != nil {
			return err
		}
		ok, err := b.svc.ActorHasRank(ctx, m.Author.ID, fam.ID, game.RankMadeMan)
		if err != nil {
			return err
		}
		if !ok {
			return game.ErrNotAuthorized
		}
		contract, err := b.svc.RequestHit(ctx, m.Author.ID, fam.ID, cmd.TargetID, cmd.Bounty, "")
		if err != nil {
			return err
		}
		b.reply(m, fmt.Sprintf("Contract `%s` open: %s on %s.",
			contract.ID, game.FormatMoney(contract.Bounty), mention(contract.TargetID)))
		return nil
	case "claim":
		id, err := uuid.Parse(cmd.ID)
		if err != nil {
			return usagef("%q is not a contract id", cmd.ID)
		}
		res, err := b.svc.ClaimHit(ctx, m.Author.ID, id, time.Now())
		if err != nil {
			return err
		}
		if res.Outcome.Success {
			b.reply(m, fmt.Sprintf("Done and done. Bounty of %s collected.", game.FormatMoney(res.Bounty)))
		} else {
			b.reply(m, fmt.Sprintf("The job went sideways. Jail for %s; the contract stays open.",
				formatDuration(res.Outcome.JailTime)))
		}
		return nil
	case "cancel":
		id, err := uuid.Parse(cmd.ID)
		if err != nil {
			return usagef("%q is not a contract id", cmd.ID)
		}
		if err := b.svc.CancelHit(ctx, m.Author.ID, id, time.Now()); err != nil {
			return err
		}
		b.reply(m, "Contract cancelled and bounty refunded.")
		return nil
	}
	return nil
}

func (b *Bot) handleFamily(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	cmd, err := parseFamily(args)
	if err != nil {
		return err
	}
	switch cmd.Action {
	case "create":
		fam, err := b.svc.CreateFamily(ctx, m.Author.ID, cmd.Name)
		if err != nil {
			return err
		}
		b.reply(m, fmt.Sprintf("The **%s** family is founded. You are the don.", fam.Name))
		return nil
	case "join":
		fam, err := b.svc.JoinFamily(ctx, m.Author.ID, cmd.Name)
		if err != nil {
			return err
		}
		b.reply(m, fmt.Sprintf("You're in. Welcome to **%s**.", fam.Name))
		return nil
	case "leave":
		if err := b.svc.LeaveFamily(ctx, m.Author.ID); err != nil {
			return err
		}
		b.reply(m, "You walked away from the family.")
		return nil
	case "info":
		fam, err := b.svc.UserFamily(ctx, m.Author.ID)
		if err != nil {
			return err
		}
		members, err := b.svc.FamilyMembers(ctx, fam.ID)
		if err != nil {
			return err
		}
		var sb strings.Builder
		for _, mem := range members {
			fmt.Fprintf(&sb, "%s — %s\n", mem.Username, mem.RankName)
		}
		b.replyEmbed(m, &discordgo.MessageEmbed{
			Title:       fam.Name,
			Description: sb.String(),
			Color:       embedColor,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Bank", Value: game.FormatMoney(fam.Money), Inline: true},
				{Name: "Reputation", Value: fmt.Sprintf("%d", fam.Reputation), Inline: true},
				{Name: "Members", Value: fmt.Sprintf("%d", fam.Members), Inline: true},
			},
		})
		return nil
	case "deposit":
		fam, err := b.svc.UserFamily(ctx, m.Author.ID)
		if err != nil {
			return err
		}
		balance, err := b.svc.FamilyDeposit(ctx, m.Author.ID, fam.ID, cmd.Amount)
		if err != nil {
			return err
		}
		b.reply(m, fmt.Sprintf("Deposited %s. Family bank: %s.",
			game.FormatMoney(cmd.Amount), game.FormatMoney(balance)))
		return nil
	case "setrank":
		fam, err := b.svc.UserFamily(ctx, m.Author.ID)
		if err != nil {
			return err
		}
		ok, err := b.svc.ActorHasRank(ctx, m.Author.ID, fam.ID, game.RankUnderboss)
		if err != nil {
			return err
		}
		if !ok {
			return game.ErrNotAuthorized
		}
		if err := b.svc.SetRank(ctx, fam.ID, cmd.TargetID, cmd.Rank); err != nil {
			return err
		}
		b.reply(m, fmt.Sprintf("%s is now %s.", mention(cmd.TargetID), cmd.Rank))
		return nil
	}
	return nil
}

func (b *Bot) handleLeaderboard(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	cmd, err := parseLeaderboard(args)
	if err != nil {
		return err
	}
	var sb strings.Builder
	title := "Richest players"
	if cmd.Scope == "families" {
		title = "Top families"
		rows, err := b.svc.FamilyLeaderboard(ctx, 10)
		if err != nil {
			return err
		}
		for i, f := range rows {
			fmt.Fprintf(&sb, "%d. **%s** — %s (rep %d)\n", i+1, f.Name, game.FormatMoney(f.Money), f.Reputation)
		}
	} else {
		rows, err := b.svc.Leaderboard(ctx, 10)
		if err != nil {
			return err
		}
		for _, r := range rows {
			fmt.Fprintf(&sb, "%d. **%s** — %s\n", r.Rank, r.Username, game.FormatMoney(r.Total))
		}
	}
	b.replyEmbed(m, &discordgo.MessageEmbed{
		Title:       title,
		Description: sb.String(),
		Color:       embedColor,
	})
	return nil
}

func (b *Bot) handleHelp(m *discordgo.MessageCreate) error {
	p := b.prefix
	b.replyEmbed(m, &discordgo.MessageEmbed{
		Title: "Commands",
		Color: embedColor,
		Description: strings.Join([]string{
			p + "balance [@user] · " + p + "daily · " + p + "transfer <@user> <amount>",
			p + "deposit <amount> · " + p + "withdraw <amount> · " + p + "rob <@user>",
			p + "turf list|info|capture|income",
			p + "heist <" + strings.Join(b.svc.EventTypes(), "|") + "> <players>",
			p + "hit request|list|claim|cancel",
			p + "family create|join|leave|info|deposit|setrank",
			p + "leaderboard [players|families]",
		}, "\n"),
	})
	return nil
}
