package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/bwmarrin/snowflake"
	notadomain "github.com/pontoComDesigner/dashboardlogcar-sub001/internal/notafiscal/domain"
	"github.com/pontoComDesigner/dashboardlogcar-sub001/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID    *snowflake.Node
	notarepo repository.Repository[notadomain.NotaFiscal]
}

func NewService(p ServiceParam) notadomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("notafiscal.service"),

		genID:    p.GenID,
		notarepo: repository.ProvideStore[notadomain.NotaFiscal](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req notadomain.CreateNotaRequest) (*notadomain.NotaFiscal, error) {
	numero := strings.TrimSpace(req.Numero)
	if numero == "" {
		return nil, notadomain.ErrNumeroObrigatorio
	}
	if len(req.Itens) == 0 {
		return nil, notadomain.ErrNotaSemItens
	}

	nota := notadomain.NotaFiscal{
		ID:       s.genID.Generate(),
		Numero:   numero,
		Emitente: strings.TrimSpace(req.Emitente),
	}

	for _, item := range req.Itens {
		codigo := strings.TrimSpace(item.CodigoProduto)
		if codigo == "" || item.Quantidade <= 0 || item.ValorUnitario < 0 {
			return nil, notadomain.ErrItemInvalido
		}
		if !item.Fracionavel && item.Quantidade != math.Trunc(item.Quantidade) {
			return nil, notadomain.ErrItemInvalido
		}

		unidade := strings.ToUpper(strings.TrimSpace(item.Unidade))
		if unidade == "" {
			unidade = "UN"
		}

		valorTotal := round2(item.Quantidade * item.ValorUnitario)
		nota.Itens = append(nota.Itens, notadomain.ItemNota{
			ID:            s.genID.Generate(),
			NotaID:        nota.ID,
			CodigoProduto: codigo,
			Descricao:     strings.TrimSpace(item.Descricao),
			Quantidade:    item.Quantidade,
			Unidade:       unidade,
			Fracionavel:   item.Fracionavel,
			ValorUnitario: item.ValorUnitario,
			ValorTotal:    valorTotal,
			Peso:          item.Peso,
			Volume:        item.Volume,
			Categoria:     strings.ToUpper(strings.TrimSpace(item.Categoria)),
		})
		nota.ValorTotal = round2(nota.ValorTotal + valorTotal)
		nota.PesoTotal += item.Peso
		nota.VolumeTotal += item.Volume
	}

	var exists int64
	if err := s.db.WithContext(ctx).
		Model(&notadomain.NotaFiscal{}).
		Where("numero = ?", numero).
		Count(&exists).Error; err != nil {
		return nil, err
	}
	if exists > 0 {
		return nil, notadomain.ErrNumeroDuplicado
	}

	if err := s.notarepo.Insert(ctx, &nota); err != nil {
		return nil, err
	}
	s.log.Info("nota fiscal criada",
		zap.String("nota_id", nota.ID.String()),
		zap.String("numero", nota.Numero),
		zap.Int("itens", len(nota.Itens)),
	)
	return &nota, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*notadomain.NotaFiscal, error) {
	notaID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, notadomain.ErrInvalidNotaID
	}

	var nota notadomain.NotaFiscal
	err = s.db.WithContext(ctx).
		Preload("Itens").
		First(&nota, "id = ?", notaID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notadomain.ErrNotaNotFound
	}
	if err != nil {
		return nil, err
	}
	return &nota, nil
}

func (s *Service) List(ctx context.Context) ([]notadomain.NotaFiscal, error) {
	var notas []notadomain.NotaFiscal
	if err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(100).
		Find(&notas).Error; err != nil {
		return nil, err
	}
	return notas, nil
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
