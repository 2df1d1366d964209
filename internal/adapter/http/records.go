package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/barberiq/internal/backend"
	"github.com/neomorfeo/barberiq/internal/domain"
)

// --- Record paths ---

type CollectionPath struct {
	TenantID   string `path:"tenantId" doc:"Barbershop ID"`
	Collection string `path:"collection" enum:"appointments,barbers,comments,services" doc:"Record collection"`
}

type RecordPath struct {
	CollectionPath
	ID string `path:"id" doc:"Record ID"`
}

// --- List Records ---

// ListRecordsInput carries the equality filters the stores use.
type ListRecordsInput struct {
	CollectionPath
	Status   string `query:"status" required:"false" doc:"Filter by status"`
	BarberID string `query:"barberId" required:"false" doc:"Filter by barber"`
	Date     string `query:"date" required:"false" doc:"Filter by date (YYYY-MM-DD)"`
	Active   string `query:"active" required:"false" enum:"true,false" doc:"Filter by active flag"`
}

func (in *ListRecordsInput) filter() domain.Filter {
	f := domain.Filter{}
	for k, v := range map[string]string{
		"status":   in.Status,
		"barberId": in.BarberID,
		"date":     in.Date,
		"active":   in.Active,
	} {
		if v != "" {
			f[k] = v
		}
	}
	return f
}

type ListRecordsOutput struct {
	Body []map[string]any
}

// --- Single Record ---

type RecordOutput struct {
	Body map[string]any
}

type CreateRecordInput struct {
	CollectionPath
	Body map[string]any
}

type UpdateRecordInput struct {
	RecordPath
	Body map[string]any
}

func registerRecords(api huma.API, svc *backend.RecordService) {
	const base = "/api/v1/barbershops/{tenantId}/{collection}"

	huma.Register(api, huma.Operation{
		OperationID: "list-records",
		Method:      http.MethodGet,
		Path:        base,
		Summary:     "List a barbershop's records",
		Tags:        []string{"Records"},
	}, func(ctx context.Context, input *ListRecordsInput) (*ListRecordsOutput, error) {
		recs, err := svc.List(ctx, input.TenantID, input.Collection, input.filter())
		if err != nil {
			return nil, toHumaError(err)
		}
		docs := make([]map[string]any, len(recs))
		for i, rec := range recs {
			docs[i] = backend.Document(rec)
		}
		return &ListRecordsOutput{Body: docs}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-record",
		Method:        http.MethodPost,
		Path:          base,
		Summary:       "Create a record",
		Tags:          []string{"Records"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateRecordInput) (*RecordOutput, error) {
		rec, err := svc.Create(ctx, input.TenantID, input.Collection, input.Body)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &RecordOutput{Body: backend.Document(rec)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-record",
		Method:      http.MethodGet,
		Path:        base + "/{id}",
		Summary:     "Get a record",
		Tags:        []string{"Records"},
	}, func(ctx context.Context, input *RecordPath) (*RecordOutput, error) {
		rec, err := svc.Get(ctx, input.TenantID, input.Collection, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &RecordOutput{Body: backend.Document(rec)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-record",
		Method:      http.MethodPatch,
		Path:        base + "/{id}",
		Summary:     "Update a record",
		Description: "Fields in the body replace the stored fields; other fields are kept.",
		Tags:        []string{"Records"},
	}, func(ctx context.Context, input *UpdateRecordInput) (*RecordOutput, error) {
		rec, err := svc.Update(ctx, input.TenantID, input.Collection, input.ID, input.Body)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &RecordOutput{Body: backend.Document(rec)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-record",
		Method:        http.MethodDelete,
		Path:          base + "/{id}",
		Summary:       "Delete a record",
		Tags:          []string{"Records"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *RecordPath) (*struct{}, error) {
		if err := svc.Delete(ctx, input.TenantID, input.Collection, input.ID); err != nil {
			return nil, toHumaError(err)
		}
		return nil, nil
	})
}
