package adapter

import (
	"fmt"

	"github.com/akolanti/profile-rag/internal/api"
	"github.com/akolanti/profile-rag/internal/domain/jobModel"
	"github.com/akolanti/profile-rag/internal/rag/retrieval"
)

func ToInitJobResponse(id string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		StatusURL: fmt.Sprintf("/status/%s", id),
	}
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {
	var errorPtr *api.JobOutgoingError
	if job.Error != nil {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	res := api.JobResponse{
		Id:          job.Id,
		Status:      string(job.Status),
		CurrentStep: string(job.CurrentStep),
		Sources:     job.Payload.Sources,
		Parallel:    job.Payload.Parallel,
		Report:      job.Report,
		Error:       errorPtr,
		StartTime:   job.CreatedTime,
	}
	if job.IsFinished() && !job.EndTime.IsZero() {
		end := job.EndTime
		res.EndTime = &end
	}
	return res
}

func ToQueryResponse(answer retrieval.Answer) api.QueryResponse {
	return api.QueryResponse{
		Answer:  answer.Answer,
		Sources: answer.Sources,
	}
}

func ErrorResponse(message string) api.ErrorResponse {
	return api.ErrorResponse{Error: message}
}
