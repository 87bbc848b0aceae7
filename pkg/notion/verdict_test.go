package notion

import (
	"context"
	"testing"
	"time"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/foundersignal/validate-cli/internal/model"
)

func testVerdictJob() model.AnalysisJob {
	return model.AnalysisJob{
		ID: "job-42",
		Hypothesis: model.Hypothesis{
			Text: "Freelancers will pay for automated invoice chasing",
		},
		Status: model.JobStatusComplete,
		Result: &model.AnalysisResult{
			Score: 7.8,
			Message: model.VerdictMessage{
				Level: model.LevelStrong,
				Label: "Strong Signal",
			},
			TotalCost: 1.23,
		},
		UpdatedAt: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	}
}

func jobIDFilter(jobID string) func(req *notionapi.DatabaseQueryRequest) bool {
	return func(req *notionapi.DatabaseQueryRequest) bool {
		pf, ok := req.Filter.(notionapi.PropertyFilter)
		if !ok {
			return false
		}
		return pf.Property == "Job ID" && pf.RichText != nil && pf.RichText.Equals == jobID
	}
}

func TestQueryAll_MultiPage(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	mc.On("QueryDatabase", ctx, "db-1", mock.MatchedBy(func(req *notionapi.DatabaseQueryRequest) bool {
		return req.StartCursor == ""
	})).Return(&notionapi.DatabaseQueryResponse{
		Results:    []notionapi.Page{{ID: "p1"}},
		HasMore:    true,
		NextCursor: notionapi.Cursor("cursor-abc"),
	}, nil).Once()

	mc.On("QueryDatabase", ctx, "db-1", mock.MatchedBy(func(req *notionapi.DatabaseQueryRequest) bool {
		return req.StartCursor == notionapi.Cursor("cursor-abc")
	})).Return(&notionapi.DatabaseQueryResponse{
		Results: []notionapi.Page{{ID: "p2"}},
		HasMore: false,
	}, nil).Once()

	pages, err := QueryAll(ctx, mc, "db-1", nil)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, notionapi.ObjectID("p1"), pages[0].ID)
	assert.Equal(t, notionapi.ObjectID("p2"), pages[1].ID)
	mc.AssertExpectations(t)
}

func TestQueryAll_Error(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	mc.On("QueryDatabase", ctx, "db-1", mock.AnythingOfType("*notionapi.DatabaseQueryRequest")).
		Return(nil, assert.AnError).Once()

	pages, err := QueryAll(ctx, mc, "db-1", nil)
	assert.Error(t, err)
	assert.Nil(t, pages)
	mc.AssertExpectations(t)
}

func TestPublishVerdict_CreatesWhenMissing(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()
	job := testVerdictJob()

	mc.On("QueryDatabase", ctx, "db-verdicts", mock.MatchedBy(jobIDFilter("job-42"))).
		Return(&notionapi.DatabaseQueryResponse{HasMore: false}, nil).Once()

	mc.On("CreatePage", ctx, mock.MatchedBy(func(req *notionapi.PageCreateRequest) bool {
		if req.Parent.DatabaseID != notionapi.DatabaseID("db-verdicts") {
			return false
		}
		score, ok := req.Properties["Score"].(notionapi.NumberProperty)
		if !ok || score.Number != 7.8 {
			return false
		}
		verdict, ok := req.Properties["Verdict"].(notionapi.SelectProperty)
		return ok && verdict.Select.Name == "Strong Signal"
	})).Return(&notionapi.Page{ID: "page-new"}, nil).Once()

	pageID, err := PublishVerdict(ctx, mc, "db-verdicts", job)
	require.NoError(t, err)
	assert.Equal(t, "page-new", pageID)
	mc.AssertExpectations(t)
}

func TestPublishVerdict_UpdatesExisting(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()
	job := testVerdictJob()

	mc.On("QueryDatabase", ctx, "db-verdicts", mock.MatchedBy(jobIDFilter("job-42"))).
		Return(&notionapi.DatabaseQueryResponse{
			Results: []notionapi.Page{{ID: "page-old"}},
			HasMore: false,
		}, nil).Once()

	mc.On("UpdatePage", ctx, "page-old", mock.AnythingOfType("*notionapi.PageUpdateRequest")).
		Return(&notionapi.Page{ID: "page-old"}, nil).Once()

	pageID, err := PublishVerdict(ctx, mc, "db-verdicts", job)
	require.NoError(t, err)
	assert.Equal(t, "page-old", pageID)
	mc.AssertExpectations(t)
}

func TestPublishVerdict_NoResult(t *testing.T) {
	mc := new(MockClient)
	job := testVerdictJob()
	job.Result = nil

	_, err := PublishVerdict(context.Background(), mc, "db-verdicts", job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no result")
	mc.AssertExpectations(t)
}

func TestVerdictProperties_PartialStatus(t *testing.T) {
	job := testVerdictJob()
	job.Result.Incomplete = true

	props := verdictProperties(job)
	status, ok := props["Status"].(notionapi.SelectProperty)
	require.True(t, ok)
	assert.Equal(t, "Partial", status.Select.Name)
}
