package cloud

// AzureMonitorAdapter wraps an Azure Monitor Logs fetch function as a
// lazy ingest.Adapter. The fetch function typically closes over a
// Log Analytics workspace query client with its own continuation
// token cursor.
type AzureMonitorAdapter struct {
	*pagingAdapter
}

// NewAzureMonitorAdapter builds an Azure Monitor adapter over fetch.
func NewAzureMonitorAdapter(fetch FetchFunc) *AzureMonitorAdapter {
	return &AzureMonitorAdapter{pagingAdapter: &pagingAdapter{
		providerTag: "azuremonitor",
		fetch:       fetch,
	}}
}
