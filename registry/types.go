package registry

// Records keep the Lambda API field names so JSON and YAML output matches
// what the AWS CLI prints for the same calls.

// LayerVersion is one entry of a layer version listing.
type LayerVersion struct {
	LayerVersionArn    string   `json:"LayerVersionArn" yaml:"LayerVersionArn"`
	Version            int64    `json:"Version" yaml:"Version"`
	Description        string   `json:"Description,omitempty" yaml:"Description,omitempty"`
	CreatedDate        string   `json:"CreatedDate" yaml:"CreatedDate"`
	CompatibleRuntimes []string `json:"CompatibleRuntimes,omitempty" yaml:"CompatibleRuntimes,omitempty"`
	LicenseInfo        string   `json:"LicenseInfo,omitempty" yaml:"LicenseInfo,omitempty"`
}

// LayerSummary is one entry of a layer listing.
type LayerSummary struct {
	LayerName             string        `json:"LayerName" yaml:"LayerName"`
	LayerArn              string        `json:"LayerArn" yaml:"LayerArn"`
	LatestMatchingVersion *LayerVersion `json:"LatestMatchingVersion,omitempty" yaml:"LatestMatchingVersion,omitempty"`
}

// LayerContent describes the uploaded archive. Location is a pre-signed URL
// that expires after ten minutes.
type LayerContent struct {
	Location   string `json:"Location" yaml:"Location"`
	CodeSha256 string `json:"CodeSha256" yaml:"CodeSha256"`
	CodeSize   int64  `json:"CodeSize" yaml:"CodeSize"`
}

// PublishedLayerVersion is the record returned by PublishLayerVersion.
type PublishedLayerVersion struct {
	Content            LayerContent `json:"Content" yaml:"Content"`
	LayerArn           string       `json:"LayerArn" yaml:"LayerArn"`
	LayerVersionArn    string       `json:"LayerVersionArn" yaml:"LayerVersionArn"`
	Description        string       `json:"Description,omitempty" yaml:"Description,omitempty"`
	CreatedDate        string       `json:"CreatedDate" yaml:"CreatedDate"`
	Version            int64        `json:"Version" yaml:"Version"`
	CompatibleRuntimes []string     `json:"CompatibleRuntimes,omitempty" yaml:"CompatibleRuntimes,omitempty"`
}

type PublishInput struct {
	LayerName          string
	Description        string
	ZipFile            []byte
	CompatibleRuntimes []string
}

type PermissionInput struct {
	// LayerName accepts a layer name or ARN.
	LayerName      string
	VersionNumber  int64
	Action         string
	StatementID    string
	Principal      string
	OrganizationID string
}
