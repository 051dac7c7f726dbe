package version

const Version = "v1.0.0"
