package consumer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/barobets-game-poc/internal/results/repository"
	"github.com/radieske/barobets-game-poc/pkg/contracts/events"
)

// Processor consome eventos game_finished do Kafka e persiste o histórico
// de resultados. Callbacks de métricas podem ser usadas para monitoramento.
type Processor struct {
	Log    *zap.Logger
	Reader *kafka.Reader
	Repo   *repository.PostgresRepo

	OnConsumed func()       // métricas (counter++)
	OnPersist  func()       // métricas
	OnError    func(string) // métricas por fase

	// Após sucesso de persistência, repassa o evento (ex: broadcast Redis)
	OnAfterPersist func(events.GameFinished)
}

// Run inicia o loop principal de consumo e processamento das mensagens Kafka
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("read")
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if p.OnConsumed != nil {
			p.OnConsumed() // callback de métrica: mensagem consumida
		}

		var ev events.GameFinished
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			p.Log.Warn("invalid message", zap.Error(err))
			if p.OnError != nil {
				p.OnError("decode")
			}
			continue
		}

		// Persiste resumo e ranking final no Postgres
		if err := p.Repo.UpsertSummary(ctx, ev); err != nil {
			p.Log.Warn("db upsert summary failed", zap.Error(err), zap.Int64("gameId", ev.GameID))
			if p.OnError != nil {
				p.OnError("db_summary")
			}
			continue
		}
		if err := p.Repo.InsertEntries(ctx, ev); err != nil {
			p.Log.Warn("db insert entries failed", zap.Error(err), zap.Int64("gameId", ev.GameID))
			if p.OnError != nil {
				p.OnError("db_entries")
			}
			continue
		}
		if p.OnPersist != nil {
			p.OnPersist() // callback de métrica: persistência concluída
		}

		if p.OnAfterPersist != nil {
			p.OnAfterPersist(ev)
		}
	}
}
