// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

/*
Package config provides a simple way to manage configuration files.

Use [Load](filename, bytes) to load a configuration from the content of a specific file.

Use [SetGlobalConfig](filename) to set filename as the global config, and then [LoadGlobal]() to load the global config.

A config file should be in yaml format. The top-level field is options, the fields of which are defined in the
[Options] struct type. For example, a valid config file is as follows:

	options:
	  log-level: 4
	  max-depth: 8
	  detector-filter: "unprotected-.*"
	  guard-policy: fallback

# Identifying call targets

Detector rules use [CodeIdentifier] to identify call targets. For example, sinks and sources are CodeIdentifiers
which identify specific methods in specific crates. The string specifications are seen as anchored regexes if they
can be compiled to regexes, otherwise they are strings.

Rule files, compiled into Go source by the rulegen tool, are read with [LoadRuleFile].

# Unsafe options

All the options that change the semantics of the analysis in a way that is known to produce wrong results are
prefixed by `unsafe-`.
*/
package config
