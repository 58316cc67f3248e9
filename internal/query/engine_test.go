package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/student-records-api/internal/models"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func sampleRecords() []models.StudentRecord {
	return []models.StudentRecord{
		{ID: "1", Name: "Bob", Email: "bob@example.com", Course: "CS", Year: intPtr(2), GPA: floatPtr(3.0), Status: models.RecordStatusActive},
		{ID: "2", Name: "Amy", Email: "amy@example.com", Course: "CS", Year: intPtr(1), GPA: floatPtr(3.5), Status: models.RecordStatusActive},
		{ID: "3", Name: "Cid", Email: "cid@example.com", Course: "Eng", Year: intPtr(3), GPA: floatPtr(2.9), Status: models.RecordStatusInactive},
	}
}

func baseQuery() models.RecordQuery {
	return models.RecordQuery{SortField: models.SortFieldName, SortOrder: models.SortOrderAsc, Page: 1, PageSize: 10}
}

func TestExecuteCourseFilter(t *testing.T) {
	q := baseQuery()
	q.Course = "CS"

	result, err := Execute(sampleRecords(), q)
	require.NoError(t, err)

	require.Len(t, result.Items, 2)
	assert.Equal(t, "Amy", result.Items[0].Name)
	assert.Equal(t, "Bob", result.Items[1].Name)
	assert.Equal(t, 2, result.Total)
	for _, item := range result.Items {
		assert.Equal(t, "CS", item.Course)
	}
}

func TestExecuteCourseFilterIsCaseSensitive(t *testing.T) {
	q := baseQuery()
	q.Course = "cs"

	result, err := Execute(sampleRecords(), q)
	require.NoError(t, err)
	assert.Empty(t, result.Items)
	assert.Zero(t, result.Total)
}

func TestExecuteAllCoursesSentinel(t *testing.T) {
	q := baseQuery()
	q.Course = models.CourseAll

	result, err := Execute(sampleRecords(), q)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
}

func TestExecuteSortByGPADesc(t *testing.T) {
	q := baseQuery()
	q.SortField = models.SortFieldGPA
	q.SortOrder = models.SortOrderDesc
	q.PageSize = 2

	result, err := Execute(sampleRecords(), q)
	require.NoError(t, err)

	require.Len(t, result.Items, 2)
	assert.Equal(t, "Amy", result.Items[0].Name)
	assert.Equal(t, "Bob", result.Items[1].Name)
	assert.Equal(t, 3, result.Total)
}

func TestExecuteSecondPage(t *testing.T) {
	q := baseQuery()
	q.Page = 2
	q.PageSize = 2

	result, err := Execute(sampleRecords(), q)
	require.NoError(t, err)

	require.Len(t, result.Items, 1)
	assert.Equal(t, "Cid", result.Items[0].Name)
	assert.Equal(t, 3, result.Total)
}

func TestExecuteSearchAcrossFields(t *testing.T) {
	records := sampleRecords()

	byName, err := Execute(records, models.RecordQuery{Search: "AMY", SortField: models.SortFieldName, SortOrder: models.SortOrderAsc, Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, byName.Items, 1)
	assert.Equal(t, "Amy", byName.Items[0].Name)

	byEmail, err := Execute(records, models.RecordQuery{Search: "cid@", SortField: models.SortFieldName, SortOrder: models.SortOrderAsc, Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, byEmail.Items, 1)
	assert.Equal(t, "Cid", byEmail.Items[0].Name)

	byCourse, err := Execute(records, models.RecordQuery{Search: "eng", SortField: models.SortFieldName, SortOrder: models.SortOrderAsc, Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, byCourse.Items, 1)
	assert.Equal(t, "Cid", byCourse.Items[0].Name)
}

func TestExecuteSearchCombinesWithCourseFilter(t *testing.T) {
	q := baseQuery()
	q.Course = "CS"
	q.Search = "example.com"

	result, err := Execute(sampleRecords(), q)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
}

func TestExecuteStatusFilter(t *testing.T) {
	q := baseQuery()
	inactive := models.RecordStatusInactive
	q.Status = &inactive

	result, err := Execute(sampleRecords(), q)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Cid", result.Items[0].Name)
}

func TestExecuteTotalIndependentOfPagination(t *testing.T) {
	for page := 1; page <= 5; page++ {
		q := baseQuery()
		q.Page = page
		q.PageSize = 1

		result, err := Execute(sampleRecords(), q)
		require.NoError(t, err)
		assert.Equal(t, 3, result.Total)
	}
}

func TestExecutePaginationIsExhaustiveAndNonOverlapping(t *testing.T) {
	full, err := Execute(sampleRecords(), baseQuery())
	require.NoError(t, err)

	var concatenated []models.StudentRecord
	for page := 1; page <= 2; page++ {
		q := baseQuery()
		q.Page = page
		q.PageSize = 2

		result, err := Execute(sampleRecords(), q)
		require.NoError(t, err)
		concatenated = append(concatenated, result.Items...)
	}

	assert.Equal(t, full.Items, concatenated)
}

func TestExecuteSortIsStable(t *testing.T) {
	records := []models.StudentRecord{
		{ID: "1", Name: "Dana", Course: "CS", Year: intPtr(2)},
		{ID: "2", Name: "Eli", Course: "CS", Year: intPtr(2)},
		{ID: "3", Name: "Fay", Course: "CS", Year: intPtr(2)},
	}

	asc := baseQuery()
	asc.SortField = models.SortFieldYear
	resultAsc, err := Execute(records, asc)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, ids(resultAsc.Items))

	desc := asc
	desc.SortOrder = models.SortOrderDesc
	resultDesc, err := Execute(records, desc)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, ids(resultDesc.Items))
}

func TestExecuteNilNumericSortsFirst(t *testing.T) {
	records := []models.StudentRecord{
		{ID: "1", Name: "Gia", GPA: floatPtr(3.2)},
		{ID: "2", Name: "Hal"},
	}

	q := baseQuery()
	q.SortField = models.SortFieldGPA

	result, err := Execute(records, q)
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "1"}, ids(result.Items))
}

func TestExecuteEmptySnapshot(t *testing.T) {
	result, err := Execute(nil, baseQuery())
	require.NoError(t, err)
	assert.Empty(t, result.Items)
	assert.Zero(t, result.Total)
}

func TestExecuteOutOfRangePage(t *testing.T) {
	q := baseQuery()
	q.Page = 42

	result, err := Execute(sampleRecords(), q)
	require.NoError(t, err)
	assert.Empty(t, result.Items)
	assert.Equal(t, 3, result.Total)
}

func TestExecuteRejectsMalformedQueries(t *testing.T) {
	cases := map[string]models.RecordQuery{
		"zero page size":     {SortField: models.SortFieldName, SortOrder: models.SortOrderAsc, Page: 1, PageSize: 0},
		"negative page size": {SortField: models.SortFieldName, SortOrder: models.SortOrderAsc, Page: 1, PageSize: -1},
		"unknown sort field": {SortField: "email", SortOrder: models.SortOrderAsc, Page: 1, PageSize: 10},
		"unknown sort order": {SortField: models.SortFieldName, SortOrder: "sideways", Page: 1, PageSize: 10},
		"zero page":          {SortField: models.SortFieldName, SortOrder: models.SortOrderAsc, Page: 0, PageSize: 10},
	}

	for name, q := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Execute(sampleRecords(), q)
			require.Error(t, err)
		})
	}
}

func TestExecuteIsDeterministic(t *testing.T) {
	q := baseQuery()
	q.Course = "CS"
	q.SortField = models.SortFieldGPA
	q.SortOrder = models.SortOrderDesc

	first, err := Execute(sampleRecords(), q)
	require.NoError(t, err)
	second, err := Execute(sampleRecords(), q)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestExecuteLeavesSnapshotUntouched(t *testing.T) {
	records := sampleRecords()

	q := baseQuery()
	q.SortField = models.SortFieldGPA
	q.SortOrder = models.SortOrderDesc
	_, err := Execute(records, q)
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2", "3"}, ids(records))
}

func ids(records []models.StudentRecord) []string {
	out := make([]string, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.ID)
	}
	return out
}
